package tui

import (
	"context"
	"time"

	"protonup-go/service"

	tea "github.com/charmbracelet/bubbletea"
)

func waitForEvent(events <-chan service.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func submitCmd(ctx context.Context, svc *service.Service, req service.Request) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Submit(ctx, req); err != nil {
			return submitErrMsg{id: req.ID, err: err}
		}
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
