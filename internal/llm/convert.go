package llm

import (
	"errors"

	"charm.land/fantasy"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

func textMessage(role fantasy.MessageRole, text string) fantasy.Message {
	return fantasy.Message{
		Role:    role,
		Content: []fantasy.MessagePart{fantasy.TextPart{Text: text}},
	}
}

func toFantasyPrompt(input []proto.Message) fantasy.Prompt {
	messages := make([]fantasy.Message, 0, len(input))

	for _, msg := range input {
		switch msg.Role {
		case proto.RoleSystem:
			messages = append(messages, textMessage(fantasy.MessageRoleSystem, msg.Content))
		case proto.RoleUser:
			messages = append(messages, textMessage(fantasy.MessageRoleUser, msg.Content))
		case proto.RoleAssistant:
			parts := make([]fantasy.MessagePart, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, fantasy.TextPart{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, fantasy.ToolCallPart{
					ToolCallID: call.ID,
					ToolName:   call.Function.Name,
					Input:      string(call.Function.Arguments),
				})
			}
			if len(parts) > 0 {
				messages = append(messages, fantasy.Message{
					Role:    fantasy.MessageRoleAssistant,
					Content: parts,
				})
			}
		case proto.RoleTool:
			parts := make([]fantasy.MessagePart, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				var output fantasy.ToolResultOutputContent
				if call.IsError {
					output = fantasy.ToolResultOutputContentError{Error: errors.New(msg.Content)}
				} else {
					output = fantasy.ToolResultOutputContentText{Text: msg.Content}
				}
				parts = append(parts, fantasy.ToolResultPart{
					ToolCallID: call.ID,
					Output:     output,
				})
			}
			if len(parts) > 0 {
				messages = append(messages, fantasy.Message{
					Role:    fantasy.MessageRoleTool,
					Content: parts,
				})
			}
		}
	}

	return messages
}

func toFantasyTools(specs []tools.Spec) []fantasy.Tool {
	if len(specs) == 0 {
		return nil
	}
	out := make([]fantasy.Tool, 0, len(specs))
	for _, spec := range specs {
		out = append(out, fantasy.FunctionTool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		})
	}
	return out
}
