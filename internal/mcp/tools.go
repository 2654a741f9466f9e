package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

// Caller executes a tool by its full <server>_<tool> name.
type Caller interface {
	CallTool(ctx context.Context, fullName string, data []byte) (string, error)
}

// Tool exposes one MCP server tool through the tools.Tool interface.
type Tool struct {
	spec   tools.Spec
	caller Caller
}

// NewTool wraps the tool of server.
func NewTool(server string, tool mcp.Tool, caller Caller) Tool {
	return Tool{
		spec: tools.Spec{
			Name:        FullName(server, tool.Name),
			Description: tool.Description,
			InputSchema: InputSchema(tool),
		},
		caller: caller,
	}
}

// FullName is the name a server tool is declared under.
func FullName(server, tool string) string {
	return fmt.Sprintf("%s_%s", server, tool)
}

// InputSchema converts the MCP input schema into a JSON schema object.
func InputSchema(tool mcp.Tool) map[string]any {
	schema := map[string]any{"type": "object"}
	if tool.InputSchema.Properties != nil {
		schema["properties"] = tool.InputSchema.Properties
	}
	if len(tool.InputSchema.Required) > 0 {
		schema["required"] = tool.InputSchema.Required
	}
	return schema
}

// Spec implements tools.Tool.
func (t Tool) Spec() tools.Spec { return t.spec }

// Call implements tools.Tool.
func (t Tool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	return t.caller.CallTool(ctx, t.spec.Name, args)
}

// Register lists the tools of every enabled server and adds them to reg.
func (s *Service) Register(ctx context.Context, reg *tools.Registry) error {
	if len(s.cfg.MCPServers) == 0 {
		return nil
	}
	byServer, err := s.Tools(ctx)
	if err != nil {
		return err
	}
	return RegisterTools(reg, byServer, s)
}

// RegisterTools adds the given server tools to reg, in server and tool order.
func RegisterTools(reg *tools.Registry, byServer map[string][]mcp.Tool, caller Caller) error {
	for _, server := range slices.Sorted(maps.Keys(byServer)) {
		for _, tool := range byServer[server] {
			if err := reg.Register(NewTool(server, tool, caller)); err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
		}
	}
	return nil
}
