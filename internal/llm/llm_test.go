package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"charm.land/fantasy"
	fopenai "charm.land/fantasy/providers/openai"
	fopenaicompat "charm.land/fantasy/providers/openaicompat"
	"github.com/stretchr/testify/require"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

func TestNew(t *testing.T) {
	t.Run("supported providers", func(t *testing.T) {
		for _, provider := range Providers() {
			t.Run(provider, func(t *testing.T) {
				m, err := New(Config{Provider: provider, Model: "some-model", APIKey: "key"})
				require.NoError(t, err)
				require.NotNil(t, m.provider)
				require.Equal(t, "some-model", m.config.Model)
			})
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := New(Config{Provider: "anthropic", Model: "claude", APIKey: "key"})
		require.ErrorIs(t, err, errs.ErrConfiguration)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := New(Config{Provider: ProviderGroq, APIKey: "key"})
		require.ErrorIs(t, err, errs.ErrConfiguration)
	})
}

func TestIsSupported(t *testing.T) {
	require.True(t, IsSupported("groq"))
	require.True(t, IsSupported("openai"))
	require.False(t, IsSupported("unsupported"))
	require.False(t, IsSupported(""))
}

func TestBuildCall(t *testing.T) {
	tokens := int64(512)
	temp := 0.2
	specs := []tools.Spec{{Name: "expense_calculator", InputSchema: map[string]any{"type": "object"}}}

	t.Run("declares tools with auto choice", func(t *testing.T) {
		m := &Model{config: Config{Provider: ProviderGroq, Model: "llama", Temperature: &temp}}
		call := m.buildCall([]proto.Message{{Role: proto.RoleUser, Content: "hi"}}, specs)
		require.Len(t, call.Prompt, 1)
		require.Len(t, call.Tools, 1)
		require.NotNil(t, call.ToolChoice)
		require.Equal(t, fantasy.ToolChoiceAuto, *call.ToolChoice)
		require.InDelta(t, 0.2, *call.Temperature, 0)
		require.Empty(t, call.ProviderOptions)
	})

	t.Run("no tools no choice", func(t *testing.T) {
		m := &Model{config: Config{Provider: ProviderGroq, Model: "llama"}}
		call := m.buildCall(nil, nil)
		require.Nil(t, call.ToolChoice)
		require.Empty(t, call.Tools)
	})

	t.Run("groq user goes to compat options", func(t *testing.T) {
		m := &Model{config: Config{Provider: ProviderGroq, Model: "llama", User: "bob"}}
		call := m.buildCall(nil, nil)
		v, ok := call.ProviderOptions[fopenaicompat.Name]
		require.True(t, ok)
		opts, ok := v.(*fopenaicompat.ProviderOptions)
		require.True(t, ok)
		require.Equal(t, "bob", *opts.User)
	})

	t.Run("openai reasoning model uses max completion tokens", func(t *testing.T) {
		m := &Model{config: Config{Provider: ProviderOpenAI, Model: "o4-mini", MaxTokens: &tokens}}
		call := m.buildCall(nil, nil)
		require.Nil(t, call.MaxOutputTokens)
		v, ok := call.ProviderOptions[fopenai.Name]
		require.True(t, ok)
		opts, ok := v.(*fopenai.ProviderOptions)
		require.True(t, ok)
		require.EqualValues(t, 512, *opts.MaxCompletionTokens)
	})

	t.Run("openai chat model keeps max tokens", func(t *testing.T) {
		m := &Model{config: Config{Provider: ProviderOpenAI, Model: "gpt-4o-mini", MaxTokens: &tokens}}
		call := m.buildCall(nil, nil)
		require.EqualValues(t, 512, *call.MaxOutputTokens)
		require.Empty(t, call.ProviderOptions)
	})
}

func TestStepConsume(t *testing.T) {
	t.Run("collects text and tool calls", func(t *testing.T) {
		s := newStep()
		s.consume(fantasy.StreamPart{Type: fantasy.StreamPartTypeTextDelta, Delta: "Let me "})
		s.consume(fantasy.StreamPart{Type: fantasy.StreamPartTypeTextDelta, Delta: "check."})
		s.consume(fantasy.StreamPart{
			Type:          fantasy.StreamPartTypeToolCall,
			ID:            "tc_1",
			ToolCallName:  "expense_calculator",
			ToolCallInput: `{"operation":"total","values":[1]}`,
		})
		s.consume(fantasy.StreamPart{Type: fantasy.StreamPartTypeToolCall, ID: "tc_1", ToolCallName: "expense_calculator"})
		s.consume(fantasy.StreamPart{Type: fantasy.StreamPartTypeFinish})

		msg := s.message()
		require.Equal(t, proto.RoleAssistant, msg.Role)
		require.Equal(t, "Let me check.", msg.Content)
		require.Len(t, msg.ToolCalls, 1)
		require.Equal(t, "tc_1", msg.ToolCalls[0].ID)
		require.JSONEq(t, `{"operation":"total","values":[1]}`, string(msg.ToolCalls[0].Function.Arguments))
		require.NoError(t, s.err)
	})

	t.Run("skips provider executed tool calls", func(t *testing.T) {
		s := newStep()
		s.consume(fantasy.StreamPart{
			Type:             fantasy.StreamPartTypeToolCall,
			ID:               "tc_1",
			ToolCallName:     "web_search",
			ToolCallInput:    "{}",
			ProviderExecuted: true,
		})
		require.Empty(t, s.message().ToolCalls)
	})

	t.Run("records stream errors", func(t *testing.T) {
		s := newStep()
		s.consume(fantasy.StreamPart{Type: fantasy.StreamPartTypeError, Error: errors.New("boom")})
		require.EqualError(t, s.err, "boom")

		s = newStep()
		s.consume(fantasy.StreamPart{Type: fantasy.StreamPartTypeError})
		require.Error(t, s.err)
	})

	t.Run("deduplicates warnings", func(t *testing.T) {
		s := newStep()
		s.consume(fantasy.StreamPart{
			Type: fantasy.StreamPartTypeWarnings,
			Warnings: []fantasy.CallWarning{
				{Type: fantasy.CallWarningTypeUnsupportedSetting, Setting: "top_k", Message: "unsupported setting: top_k"},
				{Type: fantasy.CallWarningTypeUnsupportedSetting, Setting: "top_k", Message: "unsupported setting: top_k"},
			},
		})
		require.Equal(t, []string{"unsupported setting: top_k"}, s.warnings)
	})
}

func TestNormalizeArguments(t *testing.T) {
	tests := map[string]struct {
		in, out string
	}{
		"empty":   {"", "{}"},
		"blank":   {"  ", "{}"},
		"object":  {`{"a":1}`, `{"a":1}`},
		"garbage": {`{"a":`, `"{\"a\":"`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.out, string(normalizeArguments(tc.in)))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		err  error
		kind error
	}{
		"unauthorized": {
			err:  &fantasy.ProviderError{StatusCode: http.StatusUnauthorized, Message: "invalid api key"},
			kind: errs.ErrAuthentication,
		},
		"forbidden": {
			err:  fmt.Errorf("stream: %w", &fantasy.ProviderError{StatusCode: http.StatusForbidden}),
			kind: errs.ErrAuthentication,
		},
		"server error": {
			err:  &fantasy.ProviderError{StatusCode: http.StatusInternalServerError},
			kind: errs.ErrUpstream,
		},
		"missing model": {
			err:  &fantasy.ProviderError{StatusCode: http.StatusNotFound},
			kind: errs.ErrUpstream,
		},
		"context length": {
			err:  &fantasy.ProviderError{StatusCode: http.StatusBadRequest, Message: "context_length_exceeded"},
			kind: errs.ErrUpstream,
		},
		"transport": {
			err:  errors.New("connection refused"),
			kind: errs.ErrUpstream,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := classify("groq", tc.err)
			require.ErrorIs(t, err, tc.kind)
			var e errs.Error
			require.ErrorAs(t, err, &e)
			require.NotEmpty(t, e.Reason)
		})
	}

	t.Run("context length reason", func(t *testing.T) {
		err := classify("openai", &fantasy.ProviderError{StatusCode: http.StatusBadRequest, ResponseBody: []byte(`{"code":"context_length_exceeded"}`)})
		var e errs.Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, "Maximum prompt size exceeded.", e.Reason)
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		err := classify("groq", fmt.Errorf("stream: %w", context.Canceled))
		require.ErrorIs(t, err, context.Canceled)
		require.NotErrorIs(t, err, errs.ErrUpstream)
	})
}
