// Package tui shows the progress of a planner run on the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/graph"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
)

// Runner executes a run, reporting node visits to observer.
type Runner func(ctx context.Context, observer graph.Observer) (graph.Result, error)

type stepMsg graph.Event

type doneMsg struct {
	result graph.Result
	err    error
}

// Progress is the Bubble Tea model that displays a spinner with the graph
// node being executed until the run completes.
type Progress struct {
	// Result and Err are set once the run is over.
	Result graph.Result
	Err    error

	Styles present.Styles

	spinner spinner.Model
	node    string
	step    int
	done    bool
	started time.Time
	now     func() time.Time

	events chan graph.Event
	run    Runner
	ctx    context.Context
	cancel context.CancelFunc
}

// NewProgress creates the progress model for run.
func NewProgress(ctx context.Context, r *lipgloss.Renderer, run Runner) *Progress {
	styles := present.MakeStyles(r)
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = styles.Pipe
	ctx, cancel := context.WithCancel(ctx)
	return &Progress{
		Styles:  styles,
		spinner: s,
		events:  make(chan graph.Event, 16),
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
}

// Init implements tea.Model.
func (m *Progress) Init() tea.Cmd {
	m.started = m.now()
	return tea.Batch(m.spinner.Tick, m.startRunCmd, m.waitForStepCmd)
}

// Update implements tea.Model.
func (m *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.node, m.step = msg.Node, msg.Step
		return m, m.waitForStepCmd
	case doneMsg:
		m.Result, m.Err, m.done = msg.result, msg.err, true
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancel()
			m.Err, m.done = context.Canceled, true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Progress) View() string {
	if m.done {
		return ""
	}
	elapsed := m.now().Sub(m.started).Truncate(time.Second)
	return fmt.Sprintf(
		"%s %s %s\n",
		m.spinner.View(),
		m.Styles.Node.Render(nodeLabel(m.node)),
		m.Styles.Comment.Render(fmt.Sprintf("step %d · %s", m.step, elapsed)),
	)
}

func nodeLabel(node string) string {
	switch node {
	case "":
		return "Starting"
	case "agent":
		return "Planning"
	case "tools":
		return "Running tools"
	default:
		return node
	}
}

func (m *Progress) startRunCmd() tea.Msg {
	defer close(m.events)
	res, err := m.run(m.ctx, func(e graph.Event) {
		select {
		case m.events <- e:
		default:
		}
	})
	return doneMsg{result: res, err: err}
}

func (m *Progress) waitForStepCmd() tea.Msg {
	e, ok := <-m.events
	if !ok {
		return nil
	}
	return stepMsg(e)
}
