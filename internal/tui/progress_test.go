package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/graph"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
)

func TestProgressRun(t *testing.T) {
	want := graph.Result{State: proto.NewState("Hello"), Path: []string{graph.Start, "agent", graph.End}}
	m := NewProgress(context.Background(), lipgloss.DefaultRenderer(), func(_ context.Context, observe graph.Observer) (graph.Result, error) {
		observe(graph.Event{Step: 1, Node: "agent"})
		return want, nil
	})
	m.started = time.Now()

	msg := m.startRunCmd()
	done, ok := msg.(doneMsg)
	require.True(t, ok)

	step, ok := m.waitForStepCmd().(stepMsg)
	require.True(t, ok)
	_, _ = m.Update(step)
	require.Equal(t, "agent", m.node)
	require.Contains(t, m.View(), "Planning")
	require.Contains(t, m.View(), "step 1")

	require.Nil(t, m.waitForStepCmd(), "events are closed once the run returns")

	_, cmd := m.Update(done)
	require.NotNil(t, cmd)
	require.NoError(t, m.Err)
	require.Equal(t, want.Path, m.Result.Path)
	require.Empty(t, m.View())
}

func TestProgressError(t *testing.T) {
	boom := errors.New("boom")
	m := NewProgress(context.Background(), lipgloss.DefaultRenderer(), func(context.Context, graph.Observer) (graph.Result, error) {
		return graph.Result{}, boom
	})
	_, _ = m.Update(m.startRunCmd())
	require.ErrorIs(t, m.Err, boom)
}

func TestProgressCancel(t *testing.T) {
	var runCtx context.Context
	m := NewProgress(context.Background(), lipgloss.DefaultRenderer(), func(ctx context.Context, _ graph.Observer) (graph.Result, error) {
		runCtx = ctx
		return graph.Result{}, nil
	})
	_ = m.startRunCmd()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.ErrorIs(t, m.Err, context.Canceled)
	require.ErrorIs(t, runCtx.Err(), context.Canceled)
}

func TestNodeLabel(t *testing.T) {
	require.Equal(t, "Starting", nodeLabel(""))
	require.Equal(t, "Running tools", nodeLabel("tools"))
	require.Equal(t, "custom", nodeLabel("custom"))
}
