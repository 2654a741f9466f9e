// Package proto holds the conversation types shared by the model handle, the
// tool registry and the agent graph.
package proto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is the author of a message.
type Role string

// Roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown roles.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	role := Role(strings.ToLower(s))
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", s)
	}
	*r = role
	return nil
}

// Function is the name and raw JSON arguments of a requested tool call.
type Function struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCall is a tool invocation requested by the model. On tool messages it
// identifies the call being answered.
type ToolCall struct {
	ID       string   `json:"id"`
	Function Function `json:"function"`
	IsError  bool     `json:"is_error,omitempty"`
}

// Message is a single conversation entry.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// HasToolCalls reports whether an assistant message requests tools.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// State is the graph state: an ordered message list that nodes append to.
type State struct {
	Messages []Message `json:"messages"`
}

// NewState returns a state holding a single user message.
func NewState(prompt string) State {
	return State{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

// Clone returns a copy whose message slice can be appended to without
// touching the original.
func (s State) Clone() State {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return State{Messages: msgs}
}

// Last returns the latest message.
func (s State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Validate checks the state can be sent to a model.
func (s State) Validate() error {
	if len(s.Messages) == 0 {
		return errors.New("conversation has no messages")
	}
	for i, msg := range s.Messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d: unknown role %q", i, msg.Role)
		}
		if msg.Role == RoleTool && (len(msg.ToolCalls) == 0 || msg.ToolCalls[0].ID == "") {
			return fmt.Errorf("message %d: tool message does not reference a tool call", i)
		}
	}
	return nil
}

// Conversation is a list of messages.
type Conversation []Message

func (cc Conversation) String() string {
	var sb strings.Builder
	for _, msg := range cc {
		if msg.Content == "" && len(msg.ToolCalls) == 0 {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			sb.WriteString("**System**: ")
		case RoleUser:
			sb.WriteString("**Prompt**: ")
		case RoleAssistant:
			sb.WriteString("**Assistant**: ")
		case RoleTool:
			sb.WriteString("**Tool**: ")
		}
		sb.WriteString(msg.Content)
		if msg.Role == RoleAssistant {
			for i, call := range msg.ToolCalls {
				if i > 0 || msg.Content != "" {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "> calls `%s` with `%s`", call.Function.Name, string(call.Function.Arguments))
			}
		}
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}
