package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
)

func echoTool(name string) Tool {
	return Func{
		Def: Spec{
			Name: name,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"text": map[string]any{"type": "string"}},
				"required":   []string{"text"},
			},
		},
		Fn: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct{ Text string }
			if err := json.Unmarshal(args, &in); err != nil {
				return "", err
			}
			return in.Text, nil
		},
	}
}

func call(name, args string) proto.ToolCall {
	return proto.ToolCall{ID: "call_1", Function: proto.Function{Name: name, Arguments: json.RawMessage(args)}}
}

func TestRegistryEmptyByDefault(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	require.Zero(t, r.Len())
	require.Empty(t, r.Specs())

	_, err = r.Dispatch(context.Background(), call("weather", `{}`))
	require.ErrorIs(t, err, errs.ErrToolNotFound)
}

func TestRegistryRegister(t *testing.T) {
	t.Run("sorted specs", func(t *testing.T) {
		r, err := NewRegistry(echoTool("b_echo"), echoTool("a_echo"))
		require.NoError(t, err)
		require.Equal(t, []string{"a_echo", "b_echo"}, r.Names())
		specs := r.Specs()
		require.Len(t, specs, 2)
		require.Equal(t, "a_echo", specs[0].Name)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := NewRegistry(echoTool("echo"), echoTool("echo"))
		require.ErrorContains(t, err, `register tool "echo": already registered`)
	})

	t.Run("empty name", func(t *testing.T) {
		r, _ := NewRegistry()
		require.Error(t, r.Register(Func{Def: Spec{Name: " "}}))
	})

	t.Run("invalid schema", func(t *testing.T) {
		r, _ := NewRegistry()
		err := r.Register(Func{Def: Spec{Name: "bad", InputSchema: map[string]any{"type": 42}}})
		require.ErrorContains(t, err, "invalid input schema")
	})
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	failing := Func{
		Def: Spec{Name: "failing"},
		Fn: func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("service down")
		},
	}
	r, err := NewRegistry(echoTool("echo"), failing)
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		out, err := r.Dispatch(ctx, call("echo", `{"text":"hola"}`))
		require.NoError(t, err)
		require.Equal(t, "hola", out)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := r.Dispatch(ctx, call("echo", `{"text":1}`))
		require.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("missing required argument", func(t *testing.T) {
		_, err := r.Dispatch(ctx, call("echo", ``))
		require.ErrorIs(t, err, ErrInvalidArguments)
		require.ErrorContains(t, err, "text")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := r.Dispatch(ctx, call("echo", `{"text":`))
		require.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("tool failure", func(t *testing.T) {
		_, err := r.Dispatch(ctx, call("failing", `{}`))
		require.EqualError(t, err, "tool failing: service down")
		require.NotErrorIs(t, err, errs.ErrToolNotFound)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Dispatch(ctx, call("currency_converter", `{}`))
		require.ErrorIs(t, err, errs.ErrToolNotFound)
		require.ErrorContains(t, err, "currency_converter")
	})
}

func TestExpenseCalculator(t *testing.T) {
	r, err := NewRegistry(ExpenseCalculator())
	require.NoError(t, err)

	tests := map[string]struct {
		args string
		out  string
		err  string
	}{
		"total":            {args: `{"operation":"total","values":[120,80.5,95]}`, out: "295.5"},
		"per day":          {args: `{"operation":"per_day","values":[300,150],"days":3}`, out: "150"},
		"per day rounding": {args: `{"operation":"per_day","values":[100],"days":3}`, out: "33.33"},
		"multiply":         {args: `{"operation":"multiply","values":[89,4]}`, out: "356"},
		"per day no days":  {args: `{"operation":"per_day","values":[300]}`, err: "per_day needs a positive number of days"},
		"bad operation":    {args: `{"operation":"divide","values":[1]}`, err: "invalid tool arguments"},
		"no values":        {args: `{"operation":"total","values":[]}`, err: "invalid tool arguments"},
		"extra field":      {args: `{"operation":"total","values":[1],"currency":"EUR"}`, err: "invalid tool arguments"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := r.Dispatch(context.Background(), call(ExpenseCalculatorName, tc.args))
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, out)
		})
	}
}

func TestBuiltin(t *testing.T) {
	tool, err := Builtin(ExpenseCalculatorName)
	require.NoError(t, err)
	require.Equal(t, ExpenseCalculatorName, tool.Spec().Name)

	_, err = Builtin("weather")
	require.ErrorIs(t, err, errs.ErrConfiguration)

	require.Equal(t, []string{ExpenseCalculatorName}, BuiltinNames())
}
