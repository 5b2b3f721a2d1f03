// Package console runs the interval timer in a terminal.
package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"rhythm/internal/cue"
	"rhythm/internal/timer"
)

// Engine is the part of the timer the console drives.
type Engine interface {
	Start() error
	Pause() error
	Reset()
	Snapshot() timer.Snapshot
}

// EventMsg carries a timer event into the program.
type EventMsg struct {
	Event timer.Event
}

type eventsClosedMsg struct{}

// Model is the bubbletea model for the full-screen timer.
type Model struct {
	engine   Engine
	events   <-chan timer.Event
	snap     timer.Snapshot
	toast    cue.Toast
	err      error
	width    int
	quitting bool
}

// NewModel returns a model driving engine and redrawing on events.
func NewModel(engine Engine, events <-chan timer.Event) *Model {
	return &Model{
		engine: engine,
		events: events,
		snap:   engine.Snapshot(),
		width:  defaultWidth,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan timer.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ", "enter":
			m.toggle()
		case "r":
			m.engine.Reset()
			m.err = nil
			m.toast = cue.Toast{}
		}
		m.snap = m.engine.Snapshot()

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case EventMsg:
		m.snap = m.engine.Snapshot()
		if toast, ok := cue.ToastFor(msg.Event); ok {
			m.toast = toast
		}
		if msg.Event.Kind == timer.EventReset {
			m.toast = cue.Toast{}
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) toggle() {
	var err error
	if m.engine.Snapshot().RunState == timer.Running {
		err = m.engine.Pause()
	} else {
		err = m.engine.Start()
	}
	m.err = err
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return Render(m.snap, Status{Width: m.width, Toast: m.toast, Err: m.err})
}
