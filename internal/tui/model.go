// Package tui is the interactive surface: a subject selector, a
// generate-and-translate trigger and the two output regions.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperifyio/quotegen/internal/session"
	"github.com/hyperifyio/quotegen/internal/subject"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Subjects  subject.Table
	Presenter *session.Presenter
	// Engine names the translation engine in the caption line.
	Engine string
	// DataSource names the quotation site in the caption line.
	DataSource string
	// Timeout bounds each select or generate action. Zero means none.
	Timeout time.Duration
}

type model struct {
	config  Config
	spinner spinner.Model
	width   int

	cursor    int
	busy      bool
	busyLabel string
	state     session.State
	notice    string
}

type selectedMsg struct {
	state session.State
}

type generatedMsg struct {
	state session.State
	err   error
}

// New returns a tea.Model ready to be mounted into a Program. The first
// subject is selected on start.
func New(config Config) tea.Model {
	return newModel(config)
}

func newModel(config Config) *model {
	if config.DataSource == "" {
		config.DataSource = "Wikiquote"
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return &model{
		config:  config,
		spinner: spin,
		width:   80,
		state:   config.Presenter.State(),
	}
}

func (m *model) Init() tea.Cmd {
	if m.config.Subjects.Len() == 0 {
		return nil
	}
	return m.startSelect(0)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case selectedMsg:
		m.busy = false
		m.state = msg.state
		return m, nil
	case generatedMsg:
		m.busy = false
		m.state = msg.state
		m.notice = ""
		if msg.err != nil && !errors.Is(msg.err, session.ErrNoQuotations) {
			m.notice = msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	}
	// One action at a time; keys other than quit wait for the running one.
	if m.busy {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.config.Subjects.Len()-1 {
			m.cursor++
		}
	case "enter":
		return m, m.startSelect(m.cursor)
	case "g", " ":
		return m, m.startGenerate()
	}
	return m, nil
}

func (m *model) startSelect(i int) tea.Cmd {
	s := m.config.Subjects.At(i)
	if m.state.Selected && m.state.Subject == s {
		return nil
	}
	m.cursor = i
	m.busy = true
	m.busyLabel = "Fetching quotations of " + s.Name + "…"
	return tea.Batch(m.spinner.Tick, selectCmd(m.config, s))
}

func (m *model) startGenerate() tea.Cmd {
	if !m.state.Selected {
		return nil
	}
	m.busy = true
	m.busyLabel = "Translating…"
	return tea.Batch(m.spinner.Tick, generateCmd(m.config))
}

func actionContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

func selectCmd(config Config, s subject.Subject) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := actionContext(config.Timeout)
		defer cancel()
		st, _ := config.Presenter.Select(ctx, s)
		return selectedMsg{state: st}
	}
}

func generateCmd(config Config) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := actionContext(config.Timeout)
		defer cancel()
		st, err := config.Presenter.Generate(ctx)
		return generatedMsg{state: st, err: err}
	}
}
