package model

import "context"

// NotificationKind identifies a user-facing notification.
type NotificationKind string

const (
	NotifyBreakStart         NotificationKind = "break_start"
	NotifyBreakEnd           NotificationKind = "break_end"
	NotifyBreakSkipped       NotificationKind = "break_skipped"
	NotifyDistractionWarning NotificationKind = "distraction_warning"
)

// NotificationContext carries the values a notification text refers to.
type NotificationContext struct {
	Keyword              string
	BreakDurationMinutes int
}

// Notifier delivers notifications. Delivery is fire-and-forget.
type Notifier interface {
	Notify(kind NotificationKind, note NotificationContext)
}

// Persistence loads and saves the tracker snapshot.
type Persistence interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// Classifier decides whether a tab matches the focus words.
type Classifier interface {
	IsOnTopic(tab Tab, focusWords []string) bool
}

// HistoryRecorder stores finished sessions.
type HistoryRecorder interface {
	Record(ctx context.Context, summary SessionSummary) error
	Recent(ctx context.Context, limit int) ([]SessionSummary, error)
}
