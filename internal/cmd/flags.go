package cmd

import (
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/duration"
)

var helpText = map[string]string{
	"provider":     "Model provider to use: groq or openai",
	"ask-provider": "Ask which provider to use",
	"model":        "Model identifier, overrides llm.<provider>.model_name",
	"system":       "System prompt: text, file:// path or http(s) URL",
	"max-steps":    "Maximum number of graph steps per run",
	"temp":         "Temperature (randomness) of results, from 0.0 to 2.0, -1 to disable",
	"max-tokens":   "Maximum number of tokens in response",
	"http-proxy":   "HTTP proxy to use for provider requests",
	"tool":         "Built-in tool to expose to the model (repeatable)",
	"mcp-disable":  "Disable specific MCP servers, * disables all",
	"mcp-timeout":  "Timeout for MCP tool discovery and calls (e.g. 15s, 1m)",
	"log-level":    "Log level: debug, info, warn or error",
	"raw":          "Render output as raw text when connected to a TTY",
	"quiet":        "Quiet mode (hide the spinner while loading and stderr messages for success)",
	"copy":         "Copy the answer to the clipboard",
	"word-wrap":    "Wrap formatted output at specific width (default is 80)",
	"theme":        "Theme to use in the forms; valid choices are charm, catppuccin, dracula, and base16",
	"json":         "Read a {\"messages\": [...]} conversation from stdin and print the resulting state as JSON",
	"help":         "Show help and exit",
	"version":      "Show version and exit",
}

// flagParseError is a flag parsing error.
type flagParseError struct {
	err    error
	reason string
	flag   string
}

// Error implements error.
func (f flagParseError) Error() string {
	return f.err.Error()
}

// ReasonFormat returns the reason format, a printf string with one %s verb
// for the flag.
func (f flagParseError) ReasonFormat() string {
	return f.reason
}

// Flag returns the flag the error is about.
func (f flagParseError) Flag() string {
	return f.flag
}

var (
	needsArgRe    = regexp.MustCompile(`flag needs an argument: (?:'\w' in )?(-{1,2}[\w-]+)$`)
	unknownFlagRe = regexp.MustCompile(`unknown shorthand flag: '.*' in (-\w)`)
	invalidArgRe  = regexp.MustCompile(`invalid argument ".*" for "(.*)" flag: .*`)
)

func newFlagParseError(err error) flagParseError {
	var reason, flag string
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "flag needs an argument:"):
		reason = "Flag %s needs an argument."
		if parts := needsArgRe.FindStringSubmatch(msg); len(parts) > 1 {
			flag = parts[1]
		}
	case strings.HasPrefix(msg, "unknown flag:"):
		reason = "Flag %s is missing."
		flag = strings.TrimPrefix(msg, "unknown flag: ")
	case strings.HasPrefix(msg, "unknown shorthand flag:"):
		reason = "Short flag %s is missing."
		if parts := unknownFlagRe.FindStringSubmatch(msg); len(parts) > 1 {
			flag = parts[1]
		}
	case strings.HasPrefix(msg, "invalid argument"):
		reason = "Flag %s have an invalid argument."
		if parts := invalidArgRe.FindStringSubmatch(msg); len(parts) > 1 {
			flag = parts[1]
		}
	default:
		reason = msg
	}
	return flagParseError{err: err, reason: reason, flag: flag}
}

// durationFlag accepts day and week units on top of time.ParseDuration.
type durationFlag time.Duration

func newDurationFlag(val time.Duration, p *time.Duration) *durationFlag {
	*p = val
	return (*durationFlag)(p)
}

func (d *durationFlag) Set(s string) error {
	v, err := duration.Parse(s)
	if err != nil {
		return err //nolint:wrapcheck
	}
	*d = durationFlag(v)
	return nil
}

func (d *durationFlag) String() string {
	return time.Duration(*d).String()
}

func (*durationFlag) Type() string {
	return "duration"
}
