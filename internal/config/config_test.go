package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
)

const validSettings = `
provider: groq
llm:
  groq:
    model_name: deepseek-r1-distill-llama-70b
  openai:
    model_name: gpt-4o-mini
    api-key-env: MY_OPENAI_KEY
tools: [expense_calculator]
log:
  level: debug
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tripplanner.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("reads settings and applies defaults", func(t *testing.T) {
		path := writeSettings(t, validSettings)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "groq", cfg.Provider)
		require.Equal(t, "deepseek-r1-distill-llama-70b", cfg.LLM.Groq.ModelName)
		require.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.ModelName)
		require.Equal(t, "MY_OPENAI_KEY", cfg.LLM.OpenAI.APIKeyEnv)
		require.Equal(t, []string{"expense_calculator"}, cfg.Tools)
		require.Equal(t, "debug", cfg.Log.Level)
		require.Equal(t, "console", cfg.Log.Format)
		require.Equal(t, 25, cfg.MaxSteps)
		require.InDelta(t, -1.0, cfg.Temperature, 0)
		require.Equal(t, 80, cfg.WordWrap)
		require.Equal(t, 15*time.Second, cfg.MCPTimeout)
		require.Equal(t, path, cfg.SettingsPath)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TRIPPLANNER_PROVIDER", "OpenAI")
		t.Setenv("TRIPPLANNER_OPENAI_MODEL_NAME", "o4-mini")
		t.Setenv("TRIPPLANNER_MAX_STEPS", "7")
		t.Setenv("TRIPPLANNER_LOG_FORMAT", "json")

		cfg, err := Load(writeSettings(t, validSettings))
		require.NoError(t, err)
		require.Equal(t, "openai", cfg.Provider)
		require.Equal(t, "o4-mini", cfg.ModelName("openai"))
		require.Equal(t, 7, cfg.MaxSteps)
		require.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("runtime model override", func(t *testing.T) {
		cfg, err := Load(writeSettings(t, validSettings))
		require.NoError(t, err)
		cfg.Model = "llama-3.1-8b-instant"
		require.Equal(t, "llama-3.1-8b-instant", cfg.ModelName("groq"))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
		require.NotEmpty(t, cfg.SettingsPath)
	})
}

func TestLoadInvalid(t *testing.T) {
	const models = "llm:\n  groq:\n    model_name: x\n  openai:\n    model_name: y\n"
	tests := map[string]struct {
		settings string
		reason   string
	}{
		"unsupported provider": {
			settings: "provider: anthropic\nllm:\n  groq:\n    model_name: x\n",
			reason:   `Unsupported provider "anthropic".`,
		},
		"missing model name": {
			settings: "provider: groq\nllm:\n  openai:\n    model_name: o4-mini\n",
			reason:   "The settings key llm.groq.model_name is missing.",
		},
		"missing openai model name": {
			settings: "provider: groq\nllm:\n  groq:\n    model_name: x\n",
			reason:   "The settings key llm.openai.model_name is missing.",
		},
		"negative max steps": {
			settings: models + "max-steps: -2\n",
			reason:   "max-steps must not be negative, got -2.",
		},
		"bad log level": {
			settings: models + "log:\n  level: loud\n",
			reason:   `Invalid log level "loud".`,
		},
		"bad log format": {
			settings: models + "log:\n  format: xml\n",
			reason:   `Invalid log format "xml".`,
		},
		"bad mcp server type": {
			settings: models + "mcp-servers:\n  maps:\n    type: grpc\n",
			reason:   `MCP server "maps" has an unsupported type "grpc".`,
		},
		"malformed yaml": {
			settings: "provider: [groq\n",
			reason:   "Could not parse settings file.",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tc.settings))
			require.ErrorIs(t, err, errs.ErrConfiguration)
			var e errs.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, tc.reason, e.Reason)
		})
	}
}

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripplanner.yml")
	require.NoError(t, WriteConfigFile(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default().Provider, cfg.Provider)
	require.Equal(t, DefaultGroqModel, cfg.LLM.Groq.ModelName)
	require.Equal(t, DefaultOpenAIModel, cfg.LLM.OpenAI.ModelName)
	require.Equal(t, Default().MCPTimeout, cfg.MCPTimeout)
	require.Empty(t, cfg.Tools)

	// existing files are left alone
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0o600))
	require.NoError(t, WriteConfigFile(path))
	bts, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "provider: openai\n", string(bts))
}

func TestEnsure(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "conf", "tripplanner.yml")
	t.Setenv("TRIPPLANNER_CONFIG", path)

	cfg, err := Ensure()
	require.NoError(t, err)
	require.Equal(t, path, cfg.SettingsPath)
	require.FileExists(t, path)
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("exports unset variables only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("TRIP_TEST_NEW=from-file\nTRIP_TEST_SET=from-file\n"), 0o600))
		t.Setenv("TRIP_TEST_SET", "from-env")
		t.Setenv("TRIP_TEST_NEW", "")
		require.NoError(t, os.Unsetenv("TRIP_TEST_NEW"))

		require.NoError(t, LoadDotEnv(path))
		require.Equal(t, "from-file", os.Getenv("TRIP_TEST_NEW"))
		require.Equal(t, "from-env", os.Getenv("TRIP_TEST_SET"))
	})

	t.Run("missing file is fine", func(t *testing.T) {
		require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})
}
