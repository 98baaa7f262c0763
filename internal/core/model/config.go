package model

import (
	"fmt"
	"time"
)

// BreakSettings defines the recurring work/break cycle.
type BreakSettings struct {
	WorkDurationMinutes  int  `json:"workDuration"`
	BreakDurationMinutes int  `json:"breakDuration"`
	Enabled              bool `json:"enabled"`
}

// DefaultBreakSettings returns the cycle used when nothing was persisted.
func DefaultBreakSettings() BreakSettings {
	return BreakSettings{
		WorkDurationMinutes:  45,
		BreakDurationMinutes: 5,
		Enabled:              true,
	}
}

// WorkDuration returns the work phase length.
func (settings BreakSettings) WorkDuration() time.Duration {
	return time.Duration(settings.WorkDurationMinutes) * time.Minute
}

// BreakDuration returns the break phase length.
func (settings BreakSettings) BreakDuration() time.Duration {
	return time.Duration(settings.BreakDurationMinutes) * time.Minute
}

// BreakSettingsPatch is a partial update of BreakSettings. Nil fields are left untouched.
type BreakSettingsPatch struct {
	WorkDurationMinutes  *int  `json:"workDuration,omitempty"`
	BreakDurationMinutes *int  `json:"breakDuration,omitempty"`
	Enabled              *bool `json:"enabled,omitempty"`
}

// Validate rejects non-positive durations.
func (patch BreakSettingsPatch) Validate() error {
	if patch.WorkDurationMinutes != nil && *patch.WorkDurationMinutes <= 0 {
		return fmt.Errorf("work duration %d: %w", *patch.WorkDurationMinutes, ErrInvalidInput)
	}
	if patch.BreakDurationMinutes != nil && *patch.BreakDurationMinutes <= 0 {
		return fmt.Errorf("break duration %d: %w", *patch.BreakDurationMinutes, ErrInvalidInput)
	}
	return nil
}

// Apply merges the patch into settings.
func (patch BreakSettingsPatch) Apply(settings BreakSettings) BreakSettings {
	if patch.WorkDurationMinutes != nil {
		settings.WorkDurationMinutes = *patch.WorkDurationMinutes
	}
	if patch.BreakDurationMinutes != nil {
		settings.BreakDurationMinutes = *patch.BreakDurationMinutes
	}
	if patch.Enabled != nil {
		settings.Enabled = *patch.Enabled
	}
	return settings
}

// TrackerConfig contains runtime settings for the tracking engine.
type TrackerConfig struct {
	TickInterval     time.Duration
	FlushThreshold   time.Duration
	WarningDelay     time.Duration
	WarningInterval  time.Duration
	DebugLogInterval time.Duration

	IdlePauseEnabled  bool
	IdleAfter         time.Duration
	IdleCheckInterval time.Duration

	Breaks BreakSettings
}

// DefaultTrackerConfig returns the engine timings.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		TickInterval:      time.Second,
		FlushThreshold:    5 * time.Second,
		WarningDelay:      time.Minute,
		WarningInterval:   10 * time.Second,
		DebugLogInterval:  10 * time.Second,
		IdlePauseEnabled:  false,
		IdleAfter:         5 * time.Minute,
		IdleCheckInterval: 5 * time.Second,
		Breaks:            DefaultBreakSettings(),
	}
}
