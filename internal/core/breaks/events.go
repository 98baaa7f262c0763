package breaks

import (
	"time"

	"modeon/internal/core/model"
)

// State represents the current scheduler phase.
type State string

const (
	StateWorking State = "working"
	StateOnBreak State = "on_break"
)

// EventType defines the type of scheduler event.
type EventType string

const (
	EventStateChange    EventType = "state_change"
	EventSettingsChange EventType = "settings_change"
)

// Event represents a scheduler update for observers.
type Event struct {
	Type   EventType
	State  State
	Status model.BreakStatus
	At     time.Time
}

const (
	// DeadlineNextBreak fires when the work phase is over.
	DeadlineNextBreak = "scheduled-break"
	// DeadlineBreakEnd fires when the break is over.
	DeadlineBreakEnd = "break-end"
)
