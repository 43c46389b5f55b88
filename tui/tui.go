// Package tui shows install progress in the terminal.
package tui

import (
	"context"
	"fmt"

	"protonup-go/service"

	tea "github.com/charmbracelet/bubbletea"
)

// Run installs reqs through a service and renders their progress until every
// request has finished or the user cancels. It returns the joined failures.
func Run(ctx context.Context, installer service.Starter, reqs []service.Request) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc := service.New(installer)
	runDone := make(chan error, 1)
	go func() { runDone <- svc.Run(ctx) }()

	m := NewModel(ctx, cancel, svc, svc.Events(), reqs)
	_, progErr := tea.NewProgram(m).Run()
	if progErr != nil {
		cancel()
	}

	svc.Close()
	for range svc.Events() {
	}
	<-runDone

	if progErr != nil {
		return fmt.Errorf("error running program: %w", progErr)
	}
	return m.Err()
}
