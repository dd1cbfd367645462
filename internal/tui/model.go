// Package tui provides the Bubble Tea water tracker interface.
package tui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/h2o/internal/clock"
	"github.com/verte-zerg/h2o/internal/intake"
	"github.com/verte-zerg/h2o/internal/model"
	"github.com/verte-zerg/h2o/internal/publicip"
)

// Annotator adds a short description to a resolved address.
type Annotator interface {
	Annotate(ip string) string
}

type tickMsg time.Time

type ipResolvedMsg struct {
	outcome publicip.Outcome
	note    string
}

// Model implements the Bubble Tea tracker UI.
type Model struct {
	ctx       context.Context
	config    model.Config
	tracker   *intake.Tracker
	source    publicip.Source
	annotator Annotator

	state  intake.DisplayState
	cursor int
	errMsg string

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	ipPending bool
	ipLine    string
	ipNote    string
	now       time.Time

	width  int
	height int
}

// NewModel constructs a tracker TUI model. source may be nil when the footer
// has no IP segment; annotator may be nil.
func NewModel(ctx context.Context, cfg model.Config, tracker *intake.Tracker, source publicip.Source, annotator Annotator) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := &Model{
		ctx:       ctx,
		config:    cfg,
		tracker:   tracker,
		source:    source,
		annotator: annotator,
		state:     tracker.Display(),
		keys:      newKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		ipPending: source != nil,
		now:       time.Now(),
	}
	m.spinner.Style = footerStyle
	return m
}

// State returns the most recently rendered display state.
func (m *Model) State() intake.DisplayState {
	return m.state
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.source != nil {
		cmds = append(cmds, m.spinner.Tick, m.lookupIP())
	}
	if m.config.Clock {
		cmds = append(cmds, tick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case ipResolvedMsg:
		m.ipPending = false
		m.ipLine = msg.outcome.Line
		m.ipNote = msg.note
		return m, nil
	case spinner.TickMsg:
		if !m.ipPending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if idx, ok := m.cupAt(msg.X, msg.Y); ok {
			m.selectCup(idx)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reset):
		m.state = m.tracker.Reset()
		m.cursor = 0
		m.errMsg = ""
	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < m.tracker.Units()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.selectCup(m.cursor)
	case key.Matches(msg, m.keys.Pick):
		idx := int(msg.String()[0] - '1')
		if idx < m.tracker.Units() {
			m.selectCup(idx)
		}
	}
	return m, nil
}

func (m *Model) selectCup(idx int) {
	state, err := m.tracker.Select(idx)
	if err != nil {
		log.Printf("select cup: %v", err)
		m.errMsg = err.Error()
		return
	}
	m.state = state
	m.cursor = idx
	m.errMsg = ""
}

func (m *Model) lookupIP() tea.Cmd {
	ctx, source, annotator := m.ctx, m.source, m.annotator
	return func() tea.Msg {
		out := source.Lookup(ctx)
		note := ""
		if out.OK() && annotator != nil {
			note = annotator.Annotate(out.IP)
		}
		return ipResolvedMsg{outcome: out, note: note}
	}
}

func tick() tea.Cmd {
	return tea.Tick(clock.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
