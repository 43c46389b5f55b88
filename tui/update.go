package tui

import (
	"time"

	"protonup-go/service"

	tea "github.com/charmbracelet/bubbletea"
)

// Init starts listening to the service and the progress ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

// Update handles service events, ticks and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.allFinished() {
				return m, tea.Quit
			}
			// in-flight installs observe the cancellation and report Failed
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(msg.event)
		if m.allFinished() {
			return m, tea.Quit
		}
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case eventsClosedMsg:
		return m, tea.Quit

	case submitErrMsg:
		if r, ok := m.byID[msg.id]; ok {
			r.finished = true
			r.err = msg.err
		}
		if m.allFinished() {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.sample(time.Time(msg))
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) handleEvent(ev service.Event) tea.Cmd {
	switch ev := ev.(type) {
	case service.Ready:
		m.ready = true
		cmds := make([]tea.Cmd, 0, len(m.rows))
		for _, r := range m.rows {
			cmds = append(cmds, submitCmd(m.ctx, m.svc, r.req))
		}
		return tea.Batch(cmds...)
	case service.Started:
		if r, ok := m.byID[ev.ID]; ok {
			r.state = ev.Progress
			r.lastTick = time.Now()
		}
	case service.Succeeded:
		if r, ok := m.byID[ev.ID]; ok {
			r.finished = true
		}
	case service.Failed:
		if r, ok := m.byID[ev.ID]; ok {
			r.finished = true
			r.err = ev.Err
		}
	}
	return nil
}

// sample reads every active progress handle and updates the speed estimate.
func (m *Model) sample(now time.Time) {
	for _, r := range m.rows {
		if !r.active() {
			continue
		}
		done := r.state.BytesDone()
		if elapsed := now.Sub(r.lastTick).Seconds(); elapsed > 0 {
			instant := float64(done-r.lastSeen) / elapsed
			// exponential smoothing keeps the number readable at 20 Hz
			r.speed = 0.8*r.speed + 0.2*instant
		}
		r.lastSeen = done
		r.lastTick = now
	}
}
