// Package tools holds the explicit registry of tools the model may call.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
)

// Spec is the declaration sent to the model.
type Spec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Tool is something the model can invoke by name.
type Tool interface {
	Spec() Spec
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Func adapts a function to the Tool interface.
type Func struct {
	Def Spec
	Fn  func(ctx context.Context, args json.RawMessage) (string, error)
}

// Spec implements Tool.
func (f Func) Spec() Spec { return f.Def }

// Call implements Tool.
func (f Func) Call(ctx context.Context, args json.RawMessage) (string, error) {
	return f.Fn(ctx, args)
}

// ErrInvalidArguments is returned when call arguments do not match the
// tool's input schema.
var ErrInvalidArguments = errors.New("invalid tool arguments")

type entry struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// Registry maps tool names to tools. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry
}

// NewRegistry returns an empty registry holding the given tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: map[string]entry{}}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t. Names must be unique and schemas must compile.
func (r *Registry) Register(t Tool) error {
	spec := t.Spec()
	if strings.TrimSpace(spec.Name) == "" {
		return errors.New("register tool: empty name")
	}

	var schema *gojsonschema.Schema
	if len(spec.InputSchema) > 0 {
		var err error
		schema, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(spec.InputSchema))
		if err != nil {
			return fmt.Errorf("register tool %q: invalid input schema: %w", spec.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[spec.Name]; exists {
		return fmt.Errorf("register tool %q: already registered", spec.Name)
	}
	r.tools[spec.Name] = entry{tool: t, schema: schema}
	return nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Specs returns the declarations of every registered tool, sorted by name.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]Spec, 0, len(r.tools))
	for _, e := range r.tools {
		specs = append(specs, e.tool.Spec())
	}
	slices.SortFunc(specs, func(a, b Spec) int { return strings.Compare(a.Name, b.Name) })
	return specs
}

// Dispatch runs the tool named by call.
//
// An unknown name yields errs.ErrToolNotFound. Arguments failing the input
// schema yield ErrInvalidArguments without running the tool.
func (r *Registry) Dispatch(ctx context.Context, call proto.ToolCall) (string, error) {
	r.mu.RLock()
	e, ok := r.tools[call.Function.Name]
	r.mu.RUnlock()
	if !ok {
		return "", errs.ToolNotFound(call.Function.Name)
	}

	args := call.Function.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := validate(e.schema, args); err != nil {
		return "", err
	}
	out, err := e.tool.Call(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", call.Function.Name, err)
	}
	return out, nil
}

func validate(schema *gojsonschema.Schema, args json.RawMessage) error {
	if schema == nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(problems, "; "))
}
