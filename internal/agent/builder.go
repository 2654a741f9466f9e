package agent

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/graph"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

// Graph node names.
const (
	NodeAgent = "agent"
	NodeTools = "tools"
)

// ToolsCondition routes to the tools node when the latest message requests
// tool calls and ends the run otherwise.
func ToolsCondition(_ context.Context, state proto.State) (string, error) {
	if last, ok := state.Last(); ok && last.HasToolCalls() {
		return NodeTools, nil
	}
	return graph.End, nil
}

// GraphBuilder wires a model and a tool registry into the agent graph.
type GraphBuilder struct {
	Model        ChatModel
	Registry     *tools.Registry
	SystemPrompt string
	MaxSteps     int
	Logger       zerolog.Logger
}

// Build compiles the two-node agent graph.
func (b GraphBuilder) Build() (*graph.Graph, error) {
	if b.Model == nil {
		return nil, errors.New("agent graph: nil model")
	}
	if b.Registry == nil {
		reg, err := tools.NewRegistry()
		if err != nil {
			return nil, err
		}
		b.Registry = reg
	}

	return graph.New().
		AddNode(NodeAgent, b.agentNode).
		AddNode(NodeTools, b.toolsNode).
		AddEdge(graph.Start, NodeAgent).
		AddConditionalEdges(NodeAgent, ToolsCondition, map[string]string{
			NodeTools: NodeTools,
			graph.End: graph.End,
		}).
		AddEdge(NodeTools, NodeAgent).
		Compile(graph.WithRecursionLimit(b.MaxSteps))
}

func (b GraphBuilder) agentNode(ctx context.Context, state proto.State) ([]proto.Message, error) {
	msgs := make([]proto.Message, 0, len(state.Messages)+1)
	if b.SystemPrompt != "" {
		msgs = append(msgs, proto.Message{Role: proto.RoleSystem, Content: b.SystemPrompt})
	}
	msgs = append(msgs, state.Messages...)

	reply, err := b.Model.Send(ctx, msgs, b.Registry.Specs())
	if err != nil {
		return nil, err
	}
	b.Logger.Debug().
		Int("tool_calls", len(reply.ToolCalls)).
		Int("chars", len(reply.Content)).
		Msg("model replied")
	return []proto.Message{reply}, nil
}

func (b GraphBuilder) toolsNode(ctx context.Context, state proto.State) ([]proto.Message, error) {
	last, ok := state.Last()
	if !ok || !last.HasToolCalls() {
		return nil, nil
	}

	out := make([]proto.Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		log := b.Logger.With().Str("tool", call.Function.Name).Str("call_id", call.ID).Logger()

		content, err := b.Registry.Dispatch(ctx, call)
		isError := false
		switch {
		case errors.Is(err, errs.ErrToolNotFound):
			log.Error().Msg("model requested an unregistered tool")
			return nil, err
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().Err(err).Msg("tool call failed")
			content = err.Error()
			isError = true
		default:
			log.Debug().Msg("tool call done")
		}

		out = append(out, proto.Message{
			Role:    proto.RoleTool,
			Content: content,
			ToolCalls: []proto.ToolCall{{
				ID:       call.ID,
				Function: proto.Function{Name: call.Function.Name},
				IsError:  isError,
			}},
		})
	}
	return out, nil
}
