package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
)

var flagParseErrorTests = []struct {
	in     string
	flag   string
	reason string
}{
	{
		"unknown flag: --nope",
		"--nope",
		"Flag %s is missing.",
	},
	{
		"flag needs an argument: --max-steps",
		"--max-steps",
		"Flag %s needs an argument.",
	},
	{
		"flag needs an argument: 'p' in -p",
		"-p",
		"Flag %s needs an argument.",
	},
	{
		"unknown shorthand flag: 'z' in -z",
		"-z",
		"Short flag %s is missing.",
	},
	{
		`invalid argument "20dd" for "--mcp-timeout" flag: time: unknown unit "dd" in duration "20dd"`,
		"--mcp-timeout",
		"Flag %s have an invalid argument.",
	},
	{
		`invalid argument "sdfjasdl" for "--max-tokens" flag: strconv.ParseInt: parsing "sdfjasdl": invalid syntax`,
		"--max-tokens",
		"Flag %s have an invalid argument.",
	},
	{
		`invalid argument "nope" for "-r, --raw" flag: strconv.ParseBool: parsing "nope": invalid syntax`,
		"-r, --raw",
		"Flag %s have an invalid argument.",
	},
}

func TestFlagParseError(t *testing.T) {
	for _, tf := range flagParseErrorTests {
		t.Run(tf.in, func(t *testing.T) {
			err := newFlagParseError(errors.New(tf.in))
			require.Equal(t, tf.flag, err.Flag())
			require.Equal(t, tf.reason, err.ReasonFormat())
			require.Equal(t, tf.in, err.Error())
		})
	}
}

func TestMaxStepsFlag(t *testing.T) {
	t.Run("flag is registered and can be parsed", func(t *testing.T) {
		cmd := NewRootCmd(BuildInfo{}, config.Config{}, nil)

		require.NoError(t, cmd.ParseFlags([]string{"--max-steps", "12"}))

		flag := cmd.Flag("max-steps")
		require.NotNil(t, flag)
		require.Equal(t, "12", flag.Value.String())
	})

	t.Run("keeps the configured default", func(t *testing.T) {
		cfg := config.Config{}
		cfg.MaxSteps = 25
		cmd := NewRootCmd(BuildInfo{}, cfg, nil)

		require.NoError(t, cmd.ParseFlags(nil))
		require.Equal(t, "25", cmd.Flag("max-steps").Value.String())
	})
}

func TestToolFlagRepeats(t *testing.T) {
	rt := newRuntime(BuildInfo{}, config.Config{}, nil)
	cmd := newRootCmd(rt)

	require.NoError(t, cmd.ParseFlags([]string{"--tool", "expense_calculator", "--tool", "other"}))
	require.Equal(t, []string{"expense_calculator", "other"}, rt.cfg.Tools)
}

func TestProviderFlag(t *testing.T) {
	rt := newRuntime(BuildInfo{}, config.Config{}, nil)
	cmd := newRootCmd(rt)

	require.NoError(t, cmd.ParseFlags([]string{"-p", "openai"}))
	require.Equal(t, "openai", rt.provider)
	require.Empty(t, rt.cfg.Provider, "the settings value is only replaced when the command runs")
}

func TestDurationFlag(t *testing.T) {
	for in, want := range map[string]time.Duration{
		"15s": 15 * time.Second,
		"1m":  time.Minute,
		"1d":  24 * time.Hour,
	} {
		t.Run(in, func(t *testing.T) {
			var d time.Duration
			f := newDurationFlag(time.Second, &d)
			require.Equal(t, time.Second, d)
			require.NoError(t, f.Set(in))
			require.Equal(t, want, d)
			require.Equal(t, want.String(), f.String())
			require.Equal(t, "duration", f.Type())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		var d time.Duration
		require.Error(t, newDurationFlag(0, &d).Set("soon"))
	})
}
