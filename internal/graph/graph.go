// Package graph runs a small state machine over a conversation.
//
// Nodes return the messages they want appended to the state; edges are either
// unconditional or chosen by a condition evaluated on the updated state. A run
// starts at Start and ends when an edge leads to End.
package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
)

// Pseudo-nodes.
const (
	Start = "__start__"
	End   = "__end__"
)

// DefaultRecursionLimit is the number of node visits allowed per run.
const DefaultRecursionLimit = 25

// ErrRecursionLimit is returned when a run visits more nodes than allowed.
var ErrRecursionLimit = errors.New("recursion limit reached")

// NodeFunc runs a node and returns the messages to append to the state.
type NodeFunc func(ctx context.Context, state proto.State) ([]proto.Message, error)

// ConditionFunc picks the next path key from the state.
type ConditionFunc func(ctx context.Context, state proto.State) (string, error)

// Event is reported to the Observer before a node runs.
type Event struct {
	Step  int
	Node  string
	State proto.State
}

// Observer is notified of node visits.
type Observer func(Event)

type conditional struct {
	cond    ConditionFunc
	pathMap map[string]string
}

// StateGraph builds a Graph. Methods chain; problems are reported by Compile.
type StateGraph struct {
	nodes        map[string]NodeFunc
	order        []string
	edges        map[string]string
	conditionals map[string]conditional
	errs         []error
}

// New returns an empty builder.
func New() *StateGraph {
	return &StateGraph{
		nodes:        map[string]NodeFunc{},
		edges:        map[string]string{},
		conditionals: map[string]conditional{},
	}
}

// AddNode adds a node.
func (sg *StateGraph) AddNode(id string, fn NodeFunc) *StateGraph {
	switch {
	case id == "" || id == Start || id == End:
		sg.errs = append(sg.errs, fmt.Errorf("invalid node id %q", id))
	case fn == nil:
		sg.errs = append(sg.errs, fmt.Errorf("node %q: nil function", id))
	case sg.nodes[id] != nil:
		sg.errs = append(sg.errs, fmt.Errorf("node %q: already added", id))
	default:
		sg.nodes[id] = fn
		sg.order = append(sg.order, id)
	}
	return sg
}

// AddEdge adds an unconditional edge.
func (sg *StateGraph) AddEdge(from, to string) *StateGraph {
	if sg.hasRule(from) {
		sg.errs = append(sg.errs, fmt.Errorf("node %q: more than one outgoing rule", from))
		return sg
	}
	sg.edges[from] = to
	return sg
}

// AddConditionalEdges routes from a node to pathMap[cond(state)].
func (sg *StateGraph) AddConditionalEdges(from string, cond ConditionFunc, pathMap map[string]string) *StateGraph {
	switch {
	case sg.hasRule(from):
		sg.errs = append(sg.errs, fmt.Errorf("node %q: more than one outgoing rule", from))
	case cond == nil || len(pathMap) == 0:
		sg.errs = append(sg.errs, fmt.Errorf("node %q: conditional edge needs a condition and a path map", from))
	default:
		sg.conditionals[from] = conditional{cond: cond, pathMap: pathMap}
	}
	return sg
}

func (sg *StateGraph) hasRule(from string) bool {
	_, plain := sg.edges[from]
	_, cond := sg.conditionals[from]
	return plain || cond
}

// Option configures a compiled Graph.
type Option func(*Graph)

// WithRecursionLimit sets the maximum number of node visits per run. Values
// below one keep the default.
func WithRecursionLimit(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.limit = n
		}
	}
}

// Compile validates the builder and returns a runnable Graph.
func (sg *StateGraph) Compile(opts ...Option) (*Graph, error) {
	problems := slices.Clone(sg.errs)

	if _, ok := sg.edges[Start]; !ok {
		problems = append(problems, errors.New("no edge from start"))
	}
	if sg.hasRule(End) {
		problems = append(problems, errors.New("end has an outgoing rule"))
	}

	known := func(id string) bool { return id == End || sg.nodes[id] != nil }
	for from, to := range sg.edges {
		if from != Start && sg.nodes[from] == nil {
			problems = append(problems, fmt.Errorf("edge from unknown node %q", from))
		}
		if !known(to) {
			problems = append(problems, fmt.Errorf("edge %q -> %q: unknown target", from, to))
		}
	}
	for from, c := range sg.conditionals {
		if from != Start && sg.nodes[from] == nil {
			problems = append(problems, fmt.Errorf("conditional edge from unknown node %q", from))
		}
		for key, to := range c.pathMap {
			if !known(to) {
				problems = append(problems, fmt.Errorf("conditional edge %q [%s] -> %q: unknown target", from, key, to))
			}
		}
	}
	for _, id := range sg.order {
		if !sg.hasRule(id) {
			problems = append(problems, fmt.Errorf("node %q has no outgoing rule", id))
		}
	}

	if len(problems) > 0 {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			msgs = append(msgs, p.Error())
		}
		slices.Sort(msgs)
		return nil, fmt.Errorf("invalid graph: %s", strings.Join(msgs, "; "))
	}

	g := &Graph{
		nodes:        sg.nodes,
		edges:        sg.edges,
		conditionals: sg.conditionals,
		limit:        DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Graph is a compiled, immutable state machine. It is safe for concurrent
// use as long as its node functions are.
type Graph struct {
	nodes        map[string]NodeFunc
	edges        map[string]string
	conditionals map[string]conditional
	limit        int
}

// Result is the outcome of a run.
type Result struct {
	State proto.State `json:"state"`
	// Path lists the visited states, Start and End included.
	Path []string `json:"path"`
}

// Invoke runs the graph on a copy of state.
func (g *Graph) Invoke(ctx context.Context, state proto.State, observers ...Observer) (Result, error) {
	res := Result{State: state.Clone(), Path: []string{Start}}

	current, err := g.next(ctx, Start, res.State)
	if err != nil {
		return res, err
	}

	for step := 1; current != End; step++ {
		if step > g.limit {
			return res, fmt.Errorf("%w: %d steps without reaching %s", ErrRecursionLimit, g.limit, End)
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		for _, o := range observers {
			if o != nil {
				o(Event{Step: step, Node: current, State: res.State})
			}
		}
		res.Path = append(res.Path, current)

		out, err := g.nodes[current](ctx, res.State)
		if err != nil {
			return res, err
		}
		res.State.Messages = append(res.State.Messages, out...)

		if current, err = g.next(ctx, current, res.State); err != nil {
			return res, err
		}
	}

	res.Path = append(res.Path, End)
	return res, nil
}

func (g *Graph) next(ctx context.Context, from string, state proto.State) (string, error) {
	if to, ok := g.edges[from]; ok {
		return to, nil
	}
	c := g.conditionals[from]
	key, err := c.cond(ctx, state)
	if err != nil {
		return "", fmt.Errorf("condition on %q: %w", from, err)
	}
	to, ok := c.pathMap[key]
	if !ok {
		return "", fmt.Errorf("condition on %q: no path for %q", from, key)
	}
	return to, nil
}
