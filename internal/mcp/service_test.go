package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

func testConfig(disable ...string) *config.Config {
	cfg := config.Default()
	cfg.MCPServers = map[string]config.MCPServerConfig{
		"weather": {Command: "weather-mcp"},
		"places":  {Type: "http", URL: "http://localhost:9000/mcp"},
		"rates":   {Type: "sse", URL: "http://localhost:9001/sse"},
	}
	cfg.MCPDisable = disable
	return &cfg
}

func TestEnabledServers(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		svc := New(testConfig(), zerolog.Nop())
		var names []string
		for name := range svc.EnabledServers() {
			names = append(names, name)
		}
		require.Equal(t, []string{"places", "rates", "weather"}, names)
	})

	t.Run("some disabled", func(t *testing.T) {
		svc := New(testConfig("rates"), zerolog.Nop())
		require.False(t, svc.IsEnabled("rates"))
		require.True(t, svc.IsEnabled("weather"))
		var names []string
		for name := range svc.EnabledServers() {
			names = append(names, name)
		}
		require.Equal(t, []string{"places", "weather"}, names)
	})

	t.Run("all disabled", func(t *testing.T) {
		svc := New(testConfig("*"), zerolog.Nop())
		for name := range svc.EnabledServers() {
			t.Fatalf("unexpected server %q", name)
		}
	})
}

func TestCallToolRejects(t *testing.T) {
	svc := New(testConfig("rates"), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.CallTool(ctx, "nounderscore", nil)
	require.ErrorContains(t, err, "invalid tool name")

	_, err = svc.CallTool(ctx, "flights_search", nil)
	require.ErrorContains(t, err, "invalid server name")

	_, err = svc.CallTool(ctx, "rates_convert", nil)
	require.ErrorContains(t, err, "server is disabled")
}

func TestRegisterWithoutServers(t *testing.T) {
	cfg := config.Default()
	reg, err := tools.NewRegistry()
	require.NoError(t, err)
	require.NoError(t, New(&cfg, zerolog.Nop()).Register(context.Background(), reg))
	require.Zero(t, reg.Len())
}

type fakeCaller struct {
	calls []string
	out   string
	err   error
}

func (f *fakeCaller) CallTool(_ context.Context, name string, data []byte) (string, error) {
	f.calls = append(f.calls, name+" "+string(data))
	return f.out, f.err
}

func TestRegisterTools(t *testing.T) {
	caller := &fakeCaller{out: "sunny, 24C"}
	reg, err := tools.NewRegistry()
	require.NoError(t, err)

	err = RegisterTools(reg, map[string][]mcp.Tool{
		"weather": {{
			Name:        "forecast",
			Description: "weather forecast for a city",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{"city": map[string]any{"type": "string"}},
				Required:   []string{"city"},
			},
		}},
		"places": {{Name: "search"}},
	}, caller)
	require.NoError(t, err)

	specs := reg.Specs()
	require.Len(t, specs, 2)
	require.Equal(t, "places_search", specs[0].Name)
	require.Equal(t, map[string]any{"type": "object"}, specs[0].InputSchema)
	require.Equal(t, "weather_forecast", specs[1].Name)
	require.Equal(t, "weather forecast for a city", specs[1].Description)
	require.Equal(t, []string{"city"}, specs[1].InputSchema["required"])

	out, err := reg.Dispatch(context.Background(), proto.ToolCall{
		ID:       "call_1",
		Function: proto.Function{Name: "weather_forecast", Arguments: json.RawMessage(`{"city":"Lisbon"}`)},
	})
	require.NoError(t, err)
	require.Equal(t, "sunny, 24C", out)
	require.True(t, slices.Contains(caller.calls, `weather_forecast {"city":"Lisbon"}`))

	_, err = reg.Dispatch(context.Background(), proto.ToolCall{
		ID:       "call_2",
		Function: proto.Function{Name: "weather_forecast", Arguments: json.RawMessage(`{}`)},
	})
	require.ErrorIs(t, err, tools.ErrInvalidArguments)

	caller.err = errors.New("server crashed")
	_, err = reg.Dispatch(context.Background(), proto.ToolCall{
		ID:       "call_3",
		Function: proto.Function{Name: "places_search"},
	})
	require.ErrorContains(t, err, "server crashed")
}
