// Package service runs installs on behalf of an observer that talks to it
// only through channels, such as a GUI event loop.
package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"protonup-go/apps"
	"protonup-go/download"
	"protonup-go/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("service closed")

// Request asks for one release to be installed.
type Request struct {
	ID           uuid.UUID
	Installation apps.Installation
	Release      model.Release
	Destination  string
	Overwrite    bool
}

// NewRequest wraps a download request with a fresh ID.
func NewRequest(req model.DownloadRequest) Request {
	return Request{
		ID:           uuid.New(),
		Installation: req.Installation,
		Release:      req.Release,
		Destination:  req.Destination,
		Overwrite:    req.Overwrite,
	}
}

func (r Request) download() model.DownloadRequest {
	return model.DownloadRequest{
		Installation: r.Installation,
		Release:      r.Release,
		Destination:  r.Destination,
		Overwrite:    r.Overwrite,
	}
}

// key identifies requests that would produce the same directory.
func (r Request) key() string {
	return r.Installation.Slug() + "\x00" + filepath.Join(filepath.Clean(r.Destination), r.Release.Version)
}

// Event is anything sent on the events channel.
type Event interface {
	event()
}

// Ready is always the first event.
type Ready struct{}

// Started carries the progress handle for a request.
type Started struct {
	ID       uuid.UUID
	Progress *download.ProgressState
}

// Succeeded ends a request that installed cleanly.
type Succeeded struct {
	ID uuid.UUID
}

// Failed ends a request with the pipeline error.
type Failed struct {
	ID  uuid.UUID
	Err error
}

func (Ready) event()     {}
func (Started) event()   {}
func (Succeeded) event() {}
func (Failed) event()    {}

// Starter launches an install in the background.
type Starter interface {
	Start(ctx context.Context, req model.DownloadRequest) *download.Task
}

// Service turns submitted requests into Started and terminal events.
type Service struct {
	installer Starter
	requests  chan Request
	events    chan Event
	closing   chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	inflight map[string]*download.Task
}

// New creates a service. The caller must drain Events until it is closed.
func New(installer Starter) *Service {
	return &Service{
		installer: installer,
		requests:  make(chan Request),
		events:    make(chan Event, 16),
		closing:   make(chan struct{}),
		inflight:  make(map[string]*download.Task),
	}
}

// Events returns the channel Run publishes on. It is closed when Run returns.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Submit hands a request to Run. It blocks until Run accepts it.
func (s *Service) Submit(ctx context.Context, req Request) error {
	select {
	case s.requests <- req:
		return nil
	case <-s.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting requests. Run returns once in-flight installs finish.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// Run emits Ready, then serves requests until Close or ctx is cancelled.
// Every accepted request gets exactly one Started followed by exactly one
// Succeeded or Failed. Identical requests that arrive while the first is
// still running share its task.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.events)

	g := new(errgroup.Group)
	s.events <- Ready{}

	var runErr error
loop:
	for {
		select {
		case req := <-s.requests:
			task, shared := s.taskFor(ctx, g, req)
			if shared {
				log.Debug().Msgf("request %s joins in-flight install of %s", req.ID, req.Release.Version)
			}
			s.events <- Started{ID: req.ID, Progress: task.Progress()}
			id := req.ID
			g.Go(func() error {
				if err := task.Wait(); err != nil {
					s.events <- Failed{ID: id, Err: err}
					return nil
				}
				s.events <- Succeeded{ID: id}
				return nil
			})
		case <-s.closing:
			break loop
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		}
	}

	// workers report through events and never return an error
	_ = g.Wait()
	return runErr
}

func (s *Service) taskFor(ctx context.Context, g *errgroup.Group, req Request) (*download.Task, bool) {
	key := req.key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.inflight[key]; ok {
		select {
		case <-task.Done():
			// finished but not yet cleared; a new request gets a fresh attempt
		default:
			return task, true
		}
	}

	task := s.installer.Start(ctx, req.download())
	s.inflight[key] = task
	g.Go(func() error {
		<-task.Done()
		s.mu.Lock()
		if s.inflight[key] == task {
			delete(s.inflight, key)
		}
		s.mu.Unlock()
		return nil
	})
	return task, false
}
