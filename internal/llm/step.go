package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"charm.land/fantasy"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
)

// step accumulates the stream parts of a single model call.
type step struct {
	text        strings.Builder
	calls       []proto.ToolCall
	seen        map[string]struct{}
	warnings    []string
	warningSeen map[string]struct{}
	err         error
}

func newStep() *step {
	return &step{
		seen:        map[string]struct{}{},
		warningSeen: map[string]struct{}{},
	}
}

func (s *step) consume(part fantasy.StreamPart) {
	switch part.Type {
	case fantasy.StreamPartTypeTextDelta:
		s.text.WriteString(part.Delta)
	case fantasy.StreamPartTypeToolCall:
		if part.ProviderExecuted {
			return
		}
		if _, exists := s.seen[part.ID]; exists {
			return
		}
		s.seen[part.ID] = struct{}{}
		s.calls = append(s.calls, proto.ToolCall{
			ID: part.ID,
			Function: proto.Function{
				Name:      part.ToolCallName,
				Arguments: normalizeArguments(part.ToolCallInput),
			},
		})
	case fantasy.StreamPartTypeError:
		s.err = part.Error
		if s.err == nil {
			s.err = errors.New("provider stream failed")
		}
	case fantasy.StreamPartTypeWarnings:
		for _, warning := range part.Warnings {
			text := strings.TrimSpace(warning.Message)
			if text == "" {
				text = strings.TrimSpace(warning.Details)
			}
			if text == "" && warning.Setting != "" {
				text = fmt.Sprintf("unsupported setting: %s", warning.Setting)
			}
			if text == "" {
				text = "provider warning"
			}
			key := string(warning.Type) + ":" + text
			if _, exists := s.warningSeen[key]; exists {
				continue
			}
			s.warningSeen[key] = struct{}{}
			s.warnings = append(s.warnings, text)
		}
	default:
		return
	}
}

func (s *step) message() proto.Message {
	return proto.Message{
		Role:      proto.RoleAssistant,
		Content:   s.text.String(),
		ToolCalls: append([]proto.ToolCall(nil), s.calls...),
	}
}

// normalizeArguments keeps tool arguments valid JSON so a state can always
// be serialized. Empty input becomes {} and anything else that does not parse
// is kept as a JSON string.
func normalizeArguments(input string) json.RawMessage {
	input = strings.TrimSpace(input)
	if input == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(input)) {
		return json.RawMessage(input)
	}
	bts, _ := json.Marshal(input)
	return bts
}
