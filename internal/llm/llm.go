// Package llm resolves chat models through charm.land/fantasy and sends
// conversations to them one step at a time.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"unicode"

	"charm.land/fantasy"
	fopenai "charm.land/fantasy/providers/openai"
	fopenaicompat "charm.land/fantasy/providers/openaicompat"
	"github.com/rs/zerolog"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

// Supported providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

// GroqBaseURL is the OpenAI-compatible Groq endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Providers returns the supported provider names.
func Providers() []string {
	return []string{ProviderGroq, ProviderOpenAI}
}

// IsSupported reports whether name is a supported provider.
func IsSupported(name string) bool {
	return slices.Contains(Providers(), name)
}

// Config describes a model handle.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	User        string
	HTTPClient  *http.Client
	Temperature *float64
	MaxTokens   *int64
	Logger      *zerolog.Logger
}

// Model is a resolved chat model. It is safe to share between runs; every
// Send builds its own call.
type Model struct {
	provider fantasy.Provider
	config   Config
	logger   zerolog.Logger
}

// New creates a model handle for cfg.
func New(cfg Config) (*Model, error) {
	if cfg.Model == "" {
		return nil, errs.Configuration(nil, "No model name configured for %s.", cfg.Provider)
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Model{provider: provider, config: cfg, logger: logger}, nil
}

func newProvider(cfg Config) (fantasy.Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []fopenai.Option{fopenai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, fopenai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, fopenai.WithHTTPClient(cfg.HTTPClient))
		}
		provider, err := fopenai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("new fantasy openai provider: %w", err)
		}
		return provider, nil
	case ProviderGroq:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		opts := []fopenaicompat.Option{
			fopenaicompat.WithName(ProviderGroq),
			fopenaicompat.WithAPIKey(cfg.APIKey),
			fopenaicompat.WithBaseURL(baseURL),
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, fopenaicompat.WithHTTPClient(cfg.HTTPClient))
		}
		provider, err := fopenaicompat.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("new fantasy groq provider: %w", err)
		}
		return provider, nil
	default:
		return nil, errs.Configuration(
			errs.UserErrorf("Supported providers are: groq, openai"),
			"Unsupported provider %q.", cfg.Provider,
		)
	}
}

// Send runs one model step over messages with the given tools declared and
// returns the assistant reply, which may request tool calls.
func (m *Model) Send(ctx context.Context, messages []proto.Message, specs []tools.Spec) (proto.Message, error) {
	lm, err := m.provider.LanguageModel(ctx, m.config.Model)
	if err != nil {
		return proto.Message{}, classify(m.config.Provider, fmt.Errorf("fantasy language model: %w", err))
	}

	seq, err := lm.Stream(ctx, m.buildCall(messages, specs))
	if err != nil {
		return proto.Message{}, classify(m.config.Provider, err)
	}

	st := newStep()
	for part := range seq {
		st.consume(part)
		if st.err != nil {
			break
		}
	}
	if st.err != nil {
		return proto.Message{}, classify(m.config.Provider, st.err)
	}
	if err := ctx.Err(); err != nil {
		return proto.Message{}, err
	}

	for _, warning := range st.warnings {
		m.logger.Warn().Str("provider", m.config.Provider).Msg(warning)
	}
	return st.message(), nil
}

func (m *Model) buildCall(messages []proto.Message, specs []tools.Spec) fantasy.Call {
	call := fantasy.Call{
		Prompt:          toFantasyPrompt(messages),
		MaxOutputTokens: m.config.MaxTokens,
		Temperature:     m.config.Temperature,
		Tools:           toFantasyTools(specs),
		ToolChoice:      toolChoice(specs),
		ProviderOptions: fantasy.ProviderOptions{},
	}

	switch m.config.Provider {
	case ProviderOpenAI:
		opts := &fopenai.ProviderOptions{}
		set := false
		if m.config.User != "" {
			user := m.config.User
			opts.User = &user
			set = true
		}
		// reasoning models reject max_tokens.
		if m.config.MaxTokens != nil && isReasoningModel(m.config.Model) {
			opts.MaxCompletionTokens = m.config.MaxTokens
			call.MaxOutputTokens = nil
			set = true
		}
		if set {
			call.ProviderOptions[fopenai.Name] = opts
		}
	case ProviderGroq:
		if m.config.User != "" {
			user := m.config.User
			call.ProviderOptions[fopenaicompat.Name] = &fopenaicompat.ProviderOptions{User: &user}
		}
	}

	return call
}

func isReasoningModel(name string) bool {
	r := []rune(name)
	return len(r) >= 2 && r[0] == 'o' && unicode.IsDigit(r[1])
}

func toolChoice(specs []tools.Spec) *fantasy.ToolChoice {
	if len(specs) == 0 {
		return nil
	}
	choice := fantasy.ToolChoiceAuto
	return &choice
}
