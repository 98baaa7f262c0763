package model

import (
	"errors"
	"time"
)

// ErrInvalidInput is returned at the command boundary for rejected arguments.
var ErrInvalidInput = errors.New("invalid input")

// SessionRecord is the persisted part of one tracking run.
type SessionRecord struct {
	Keyword            string    `json:"focusKeyword"`
	FocusWords         []string  `json:"focusWords"`
	FocusSeconds       float64   `json:"focusTimeSeconds"`
	DistractionSeconds float64   `json:"distractionTimeSeconds"`
	StartedAt          time.Time `json:"startedAt"`
	LastAccountedAt    time.Time `json:"lastAccountedAt"`
	IsTracking         bool      `json:"isTracking"`
}

// Clone returns a copy that shares no slices with the original.
func (record SessionRecord) Clone() SessionRecord {
	if record.FocusWords != nil {
		record.FocusWords = append([]string(nil), record.FocusWords...)
	}
	return record
}

// BreakState is the persisted work/break phase.
type BreakState struct {
	IsOnBreak          bool       `json:"isOnBreak"`
	BreakStartTime     *time.Time `json:"breakStartTime"`
	BreakEndTime       *time.Time `json:"breakEndTime"`
	LastWorkSessionEnd *time.Time `json:"lastWorkSessionEnd"`
	NextBreakScheduled *time.Time `json:"nextBreakScheduled"`
}

// Clone duplicates pointer fields so the copy can be mutated independently.
func (state BreakState) Clone() BreakState {
	state.BreakStartTime = cloneTime(state.BreakStartTime)
	state.BreakEndTime = cloneTime(state.BreakEndTime)
	state.LastWorkSessionEnd = cloneTime(state.LastWorkSessionEnd)
	state.NextBreakScheduled = cloneTime(state.NextBreakScheduled)
	return state
}

// Snapshot groups the three persisted records. A nil field means the record is absent.
type Snapshot struct {
	Session  *SessionRecord `json:"session,omitempty"`
	Breaks   *BreakState    `json:"breaks,omitempty"`
	Settings *BreakSettings `json:"settings,omitempty"`
}

// Tab is the active browser tab as reported by the extension.
type Tab struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SessionSummary is one finished session kept in history.
type SessionSummary struct {
	ID                 string    `json:"id"`
	Keyword            string    `json:"focusKeyword"`
	StartedAt          time.Time `json:"startedAt"`
	StoppedAt          time.Time `json:"stoppedAt"`
	FocusSeconds       float64   `json:"focusTimeSeconds"`
	DistractionSeconds float64   `json:"distractionTimeSeconds"`
}

// TimePtr returns a pointer to a copy of value.
func TimePtr(value time.Time) *time.Time {
	return &value
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
