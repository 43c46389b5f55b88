package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"protonup-go/download"
	"protonup-go/service"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/google/uuid"
)

// row tracks one request on screen.
type row struct {
	req      service.Request
	state    *download.ProgressState
	bar      progress.Model
	lastSeen int64
	lastTick time.Time
	speed    float64 // bytes per second
	finished bool
	err      error
}

func (r *row) active() bool {
	return r.state != nil && !r.finished
}

// Model renders one progress bar per request while the service installs them.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	svc       *service.Service
	events    <-chan service.Event
	rows      []*row
	byID      map[uuid.UUID]*row
	ready     bool
	cancelled bool
	width     int
}

// NewModel prepares the view for reqs. Requests are submitted once the
// service reports Ready.
func NewModel(ctx context.Context, cancel context.CancelFunc, svc *service.Service, events <-chan service.Event, reqs []service.Request) *Model {
	m := &Model{
		ctx:    ctx,
		cancel: cancel,
		svc:    svc,
		events: events,
		byID:   make(map[uuid.UUID]*row, len(reqs)),
	}
	for _, req := range reqs {
		r := &row{
			req: req,
			bar: progress.New(
				progress.WithGradient("#FFAA00", "#FFD700"),
				progress.WithoutPercentage(),
				progress.WithWidth(progressBarWidth),
			),
		}
		m.rows = append(m.rows, r)
		m.byID[req.ID] = r
	}
	return m
}

func (m *Model) allFinished() bool {
	for _, r := range m.rows {
		if !r.finished {
			return false
		}
	}
	return true
}

// Err joins the failures of every request, or returns nil.
func (m *Model) Err() error {
	var errs []error
	for _, r := range m.rows {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.req.Release.Version, r.err))
		}
	}
	return errors.Join(errs...)
}
