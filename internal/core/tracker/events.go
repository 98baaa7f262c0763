package tracker

import (
	"errors"
	"time"

	"modeon/internal/core/model"
)

var (
	// ErrIdleUnsupported indicates idle detection is not available on this system.
	ErrIdleUnsupported = errors.New("idle detection unsupported")
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("tracker closed")
)

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// EventType defines the type of Tracker event.
type EventType string

const (
	EventSessionChanged    EventType = "session_changed"
	EventBreakStateChanged EventType = "break_state_changed"
)

// Event represents a Tracker update for observers.
type Event struct {
	Type   EventType
	Status model.TrackerStatus
	At     time.Time
}
