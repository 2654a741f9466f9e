// Package agent contains the planner's core (non-UI) logic.
//
// It resolves the configured provider into a chat model, wires the model and
// the tool registry into the agent graph, and runs one conversation turn.
package agent
