package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	_ "embed"

	"github.com/caarlos0/env/v9"
	"github.com/rs/zerolog"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/llm"
)

//go:embed config_template.yml
var configTemplate string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRIPPLANNER_"

// Default model identifiers written to a fresh settings file.
const (
	DefaultGroqModel   = "deepseek-r1-distill-llama-70b"
	DefaultOpenAIModel = "o4-mini"
)

// ProviderSettings configures one model provider.
type ProviderSettings struct {
	ModelName string `yaml:"model_name" env:"MODEL_NAME"`
	BaseURL   string `yaml:"base-url" env:"BASE_URL"`
	APIKey    string `yaml:"api-key"`
	APIKeyEnv string `yaml:"api-key-env"`
	APIKeyCmd string `yaml:"api-key-cmd"`
}

// LLM holds the per-provider settings under the llm key.
type LLM struct {
	Groq   ProviderSettings `yaml:"groq" envPrefix:"GROQ_"`
	OpenAI ProviderSettings `yaml:"openai" envPrefix:"OPENAI_"`
}

// For returns the settings of the named provider.
func (l LLM) For(provider string) (ProviderSettings, bool) {
	switch provider {
	case llm.ProviderGroq:
		return l.Groq, true
	case llm.ProviderOpenAI:
		return l.OpenAI, true
	}
	return ProviderSettings{}, false
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	File   string `yaml:"file" env:"LOG_FILE"`
}

// Settings holds persisted configuration loaded from the YAML settings file
// and environment variables.
type Settings struct {
	Provider     string   `yaml:"provider" env:"PROVIDER"`
	LLM          LLM      `yaml:"llm"`
	SystemPrompt string   `yaml:"system-prompt" env:"SYSTEM_PROMPT"`
	MaxSteps     int      `yaml:"max-steps" env:"MAX_STEPS"`
	Temperature  float64  `yaml:"temp" env:"TEMP"`
	MaxTokens    int64    `yaml:"max-tokens" env:"MAX_TOKENS"`
	HTTPProxy    string   `yaml:"http-proxy" env:"HTTP_PROXY"`
	User         string   `yaml:"user" env:"USER"`
	WordWrap     int      `yaml:"word-wrap" env:"WORD_WRAP"`
	Raw          bool     `yaml:"raw" env:"RAW"`
	Quiet        bool     `yaml:"quiet" env:"QUIET"`
	Theme        string   `yaml:"theme" env:"THEME"`
	Tools        []string `yaml:"tools" env:"TOOLS"`
	Log          Log      `yaml:"log"`

	MCPServers      map[string]MCPServerConfig `yaml:"mcp-servers"`
	MCPDisable      []string                   `yaml:"mcp-disable" env:"MCP_DISABLE"`
	MCPTimeout      time.Duration              `yaml:"mcp-timeout" env:"MCP_TIMEOUT"`
	MCPNoInheritEnv bool                       `yaml:"mcp-no-inherit-env" env:"MCP_NO_INHERIT_ENV"`
}

// Runtime holds CLI/runtime-only options that should not be loaded from the
// settings file.
type Runtime struct {
	SettingsPath string
	Model        string
	AskProvider  bool
	JSON         bool
	Copy         bool
	ShowHelp     bool
	Version      bool
}

// Config is the application configuration (settings + runtime-only options).
//
// Settings fields are promoted for ergonomic access, but runtime fields are
// explicitly excluded from YAML/env parsing.
type Config struct {
	Settings `yaml:",inline"`
	Runtime  `yaml:"-" env:"-"`
}

// MCPServerConfig holds configuration for an MCP server.
type MCPServerConfig struct {
	Type    string   `yaml:"type"`
	Command string   `yaml:"command"`
	Env     []string `yaml:"env"`
	Args    []string `yaml:"args"`
	URL     string   `yaml:"url"`
}

// ModelName returns the model identifier for provider, honoring the runtime
// --model override.
func (c *Config) ModelName(provider string) string {
	if c.Model != "" {
		return c.Model
	}
	ps, _ := c.LLM.For(provider)
	return ps.ModelName
}

// DefaultPath returns the settings file location. TRIPPLANNER_CONFIG wins
// over ~/.config/tripplanner/tripplanner.yml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Error{Err: err, Reason: "Could not determine home directory."}
	}
	return filepath.Join(home, ".config", "tripplanner", "tripplanner.yml"), nil
}

// Ensure loads settings from disk and environment and applies defaults.
//
// It loads ./.env first and creates the default settings file if it does
// not exist.
func Ensure() (Config, error) {
	c := Default()
	if err := LoadDotEnv(".env"); err != nil {
		return c, err
	}

	sp, err := DefaultPath()
	if err != nil {
		return c, err
	}
	c.SettingsPath = sp

	if err := os.MkdirAll(filepath.Dir(sp), 0o700); err != nil {
		return c, errs.Error{Err: err, Reason: "Could not create config directory."}
	}
	if err := WriteConfigFile(sp); err != nil {
		return c, err
	}
	return Load(sp)
}

// LoadDotEnv exports the variables of a dotenv file that are not already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := gotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errs.Error{Err: err, Reason: fmt.Sprintf("Could not parse %s.", path)}
}

// Load reads the settings file at path, overlays the environment and
// validates the result.
func Load(path string) (Config, error) {
	c := Default()
	c.SettingsPath = path

	content, err := os.ReadFile(path)
	if err != nil {
		return c, errs.Error{Err: err, Reason: "Could not read settings file."}
	}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, errs.Configuration(err, "Could not parse settings file.")
	}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return c, errs.Configuration(err, "Could not parse environment into settings file.")
	}

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.WordWrap == 0 {
		c.WordWrap = 80
	}
	if c.MCPTimeout == 0 {
		c.MCPTimeout = Default().MCPTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = Default().Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = Default().Log.Format
	}

	return c, c.Validate()
}

// Validate checks the settings that later stages rely on.
func (c *Config) Validate() error {
	if !llm.IsSupported(c.Provider) {
		return errs.Configuration(
			errs.UserErrorf("Supported providers are: %s", strings.Join(llm.Providers(), ", ")),
			"Unsupported provider %q.", c.Provider,
		)
	}
	for _, provider := range llm.Providers() {
		if strings.TrimSpace(c.ModelName(provider)) == "" {
			return MissingModelError(provider, c.SettingsPath)
		}
	}
	if c.MaxSteps < 0 {
		return errs.Configuration(nil, "max-steps must not be negative, got %d.", c.MaxSteps)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errs.Configuration(err, "Invalid log level %q.", c.Log.Level)
	}
	if !slices.Contains([]string{"console", "json"}, c.Log.Format) {
		return errs.Configuration(
			errs.UserErrorf("Use console or json."),
			"Invalid log format %q.", c.Log.Format,
		)
	}
	for name, server := range c.MCPServers {
		switch server.Type {
		case "", "stdio", "sse", "http":
		default:
			return errs.Configuration(
				errs.UserErrorf("Supported types are: stdio, sse, http"),
				"MCP server %q has an unsupported type %q.", name, server.Type,
			)
		}
	}
	return nil
}

// MissingModelError reports an absent llm.<provider>.model_name key.
func MissingModelError(provider, path string) error {
	return errs.Configuration(
		errs.UserErrorf(
			"Set it in %s or export %s%s_MODEL_NAME.",
			path, EnvPrefix, strings.ToUpper(provider),
		),
		"The settings key llm.%s.model_name is missing.", provider,
	)
}

// WriteConfigFile creates the config file at path if it does not exist.
func WriteConfigFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(path)
	} else if err != nil {
		return errs.Error{Err: err, Reason: "Could not stat path."}
	}
	return nil
}

func createConfigFile(path string) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	f, err := os.Create(path)
	if err != nil {
		return errs.Error{Err: err, Reason: "Could not create configuration file."}
	}
	defer func() { _ = f.Close() }()

	m := struct {
		Config      Config
		GroqModel   string
		OpenAIModel string
	}{
		Config:      Default(),
		GroqModel:   DefaultGroqModel,
		OpenAIModel: DefaultOpenAIModel,
	}
	if err := tmpl.Execute(f, m); err != nil {
		return errs.Error{Err: err, Reason: "Could not render template."}
	}
	return nil
}

// Default returns the default configuration values.
//
// Model names stay empty; they come from the settings file or the
// environment.
func Default() Config {
	return Config{
		Settings: Settings{
			Provider:    llm.ProviderGroq,
			MaxSteps:    25,
			Temperature: -1,
			WordWrap:    80,
			Theme:       "charm",
			Log: Log{
				Level:  "warn",
				Format: "console",
			},
			MCPTimeout: 15 * time.Second,
		},
	}
}
