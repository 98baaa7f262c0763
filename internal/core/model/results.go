package model

import "time"

// BreakStatus is the externally visible break scheduling state.
type BreakStatus struct {
	IsOnBreak      bool          `json:"isOnBreak"`
	TimeRemaining  int           `json:"timeRemaining"`
	NextBreakIn    int           `json:"nextBreakIn"`
	BreakStartTime *time.Time    `json:"breakStartTime"`
	Settings       BreakSettings `json:"settings"`
}

// SessionStats summarizes the current session.
type SessionStats struct {
	FocusKeyword       string         `json:"focusKeyword"`
	FocusWords         []string       `json:"focusWords"`
	FocusMinutes       int            `json:"focusTime"`
	DistractionMinutes int            `json:"distractionTime"`
	FocusSeconds       float64        `json:"focusTimeSeconds"`
	DistractionSeconds float64        `json:"distractionTimeSeconds"`
	FocusRatio         int            `json:"focusRatio"`
	IsTracking         bool           `json:"isTracking"`
	CurrentActivity    ActivityStatus `json:"currentActivity"`
	BreakStatus        BreakStatus    `json:"breakStatus"`
}

// TrackerStatus is the short status polled by the popup.
type TrackerStatus struct {
	IsTracking      bool           `json:"isTracking"`
	FocusKeyword    string         `json:"focusKeyword"`
	FocusWords      []string       `json:"focusWords"`
	CurrentActivity ActivityStatus `json:"currentActivity"`
	BreakStatus     BreakStatus    `json:"breakStatus"`
}
