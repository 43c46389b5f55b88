package tui

import (
	"time"

	"protonup-go/service"

	"github.com/google/uuid"
)

type (
	// eventMsg wraps one event read from the service.
	eventMsg struct {
		event service.Event
	}
	// eventsClosedMsg means the service has stopped.
	eventsClosedMsg struct{}
	submitErrMsg    struct {
		id  uuid.UUID
		err error
	}
	tickMsg time.Time
)
