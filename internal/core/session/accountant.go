package session

import (
	"log/slog"
	"math"
	"time"

	"modeon/internal/core/deadline"
	"modeon/internal/core/model"
)

// BreakPhase reports whether accounting is suspended for a break.
type BreakPhase interface {
	IsOnBreak() bool
}

// Config contains the accounting and warning timings.
type Config struct {
	FlushThreshold  time.Duration
	WarningDelay    time.Duration
	WarningInterval time.Duration
}

// Deps are the collaborators of an Accountant. Nil fields get inert defaults.
type Deps struct {
	Timer    deadline.Timer
	Clock    deadline.Clock
	Notifier model.Notifier
	Breaks   BreakPhase
	Persist  func()
	Logger   *slog.Logger
}

// Accountant folds elapsed time into focus and distraction totals.
// Elapsed time is buffered in memory and written out once a bucket reaches
// the flush threshold. It does no locking; callers serialize access.
type Accountant struct {
	config Config
	record model.SessionRecord
	status model.ActivityStatus

	focusPending       time.Duration
	distractionPending time.Duration
	accountedThrough   time.Time
	warningsShown      int

	timer    deadline.Timer
	clock    deadline.Clock
	notifier model.Notifier
	breaks   BreakPhase
	persist  func()
	logger   *slog.Logger
}

// New creates an idle Accountant.
func New(config Config, deps Deps) *Accountant {
	if config.FlushThreshold <= 0 {
		config.FlushThreshold = 5 * time.Second
	}
	if config.WarningDelay <= 0 {
		config.WarningDelay = time.Minute
	}
	if config.WarningInterval <= 0 {
		config.WarningInterval = 10 * time.Second
	}
	if deps.Timer == nil {
		deps.Timer = deadline.NewTimers()
	}
	if deps.Clock == nil {
		deps.Clock = deadline.SystemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Breaks == nil {
		deps.Breaks = neverOnBreak{}
	}
	if deps.Persist == nil {
		deps.Persist = func() {}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Accountant{
		config:   config,
		timer:    deps.Timer,
		clock:    deps.Clock,
		notifier: deps.Notifier,
		breaks:   deps.Breaks,
		persist:  deps.Persist,
		logger:   deps.Logger.With("component", "session"),
	}
}

// Start resets the session for keyword and begins tracking.
// An empty keyword is ignored and reported as false.
func (accountant *Accountant) Start(keyword string) bool {
	keyword = NormalizeKeyword(keyword)
	if keyword == "" {
		accountant.logger.Warn("session start ignored: empty keyword")
		return false
	}

	now := accountant.clock.Now()
	accountant.record = model.SessionRecord{
		Keyword:         keyword,
		FocusWords:      FocusWords(keyword),
		StartedAt:       now,
		LastAccountedAt: now,
		IsTracking:      true,
	}
	accountant.accountedThrough = now
	accountant.focusPending = 0
	accountant.distractionPending = 0
	accountant.status = model.Unknown
	accountant.warningsShown = 0
	accountant.clearWarningDeadlines()
	accountant.persist()

	accountant.logger.Info("session started", "keyword", keyword, "focus_words", accountant.record.FocusWords)
	return true
}

// Stop accounts time up to now, flushes the buffer and stops tracking.
// Totals stay readable until the next Start.
func (accountant *Accountant) Stop(now time.Time) {
	if !accountant.record.IsTracking {
		return
	}
	if !accountant.breaks.IsOnBreak() {
		accountant.accrue(now)
	}
	accountant.flushPending()
	accountant.record.IsTracking = false
	accountant.status = model.Unknown
	accountant.clearWarningDeadlines()
	accountant.persist()

	accountant.logger.Info("session stopped",
		"focus_seconds", accountant.record.FocusSeconds,
		"distraction_seconds", accountant.record.DistractionSeconds,
	)
}

// RecordClassification stores the latest tab classification. It never
// advances time; entering or leaving a distraction drives the warning deadlines.
func (accountant *Accountant) RecordClassification(status model.ActivityStatus) {
	if !accountant.record.IsTracking || accountant.breaks.IsOnBreak() {
		accountant.logger.Debug("classification ignored", "status", status)
		return
	}

	previous := accountant.status
	accountant.status = status
	switch {
	case status == model.Distraction && previous != model.Distraction:
		accountant.startWarnings()
	case status != model.Distraction && previous == model.Distraction:
		accountant.clearWarningDeadlines()
	}
}

// Tick folds the time elapsed since the previous tick into the bucket of
// the current status and persists once a bucket reaches the threshold.
func (accountant *Accountant) Tick(now time.Time) {
	if !accountant.record.IsTracking || accountant.breaks.IsOnBreak() {
		accountant.accountedThrough = now
		accountant.record.LastAccountedAt = now
		return
	}
	if !accountant.accrue(now) {
		return
	}
	threshold := accountant.config.FlushThreshold
	if accountant.focusPending >= threshold || accountant.distractionPending >= threshold {
		accountant.flushPending()
		accountant.persist()
		accountant.logger.Debug("session updated",
			"focus_seconds", accountant.record.FocusSeconds,
			"distraction_seconds", accountant.record.DistractionSeconds,
		)
	}
}

// Flush accounts time up to now and writes out the buffer regardless of the threshold.
func (accountant *Accountant) Flush(now time.Time) {
	if accountant.record.IsTracking && !accountant.breaks.IsOnBreak() {
		accountant.accrue(now)
	}
	accountant.flushPending()
}

// Suspend closes the accounting window at now and forgets the current
// classification. Used when a break begins.
func (accountant *Accountant) Suspend(now time.Time) {
	if accountant.record.IsTracking {
		accountant.accrue(now)
	}
	accountant.flushPending()
	accountant.status = model.Unknown
	accountant.clearWarningDeadlines()
}

// Resume restarts the accounting window at now, so the break that just
// ended is not counted by the next tick.
func (accountant *Accountant) Resume(now time.Time) {
	accountant.accountedThrough = now
}

// Restore loads a persisted session. Time the process was not running is
// not attributed to either bucket.
func (accountant *Accountant) Restore(record *model.SessionRecord) {
	if record == nil {
		return
	}
	accountant.record = record.Clone()
	if accountant.record.Keyword != "" && len(accountant.record.FocusWords) == 0 {
		accountant.record.FocusWords = FocusWords(accountant.record.Keyword)
	}

	now := accountant.clock.Now()
	accountant.record.LastAccountedAt = now
	accountant.accountedThrough = now
	accountant.focusPending = 0
	accountant.distractionPending = 0
	accountant.status = model.Unknown
	accountant.clearWarningDeadlines()
}

// ClearWarnings cancels the distraction warning deadlines.
func (accountant *Accountant) ClearWarnings() {
	accountant.clearWarningDeadlines()
}

// Stats summarizes the persisted totals. Break status is left for the caller.
func (accountant *Accountant) Stats() model.SessionStats {
	focus := accountant.record.FocusSeconds
	distraction := accountant.record.DistractionSeconds

	ratio := 0
	if total := focus + distraction; total > 0 {
		ratio = int(math.Round(100 * focus / total))
	}

	return model.SessionStats{
		FocusKeyword:       accountant.record.Keyword,
		FocusWords:         accountant.FocusWords(),
		FocusMinutes:       int(math.Floor(focus / 60)),
		DistractionMinutes: int(math.Floor(distraction / 60)),
		FocusSeconds:       focus,
		DistractionSeconds: distraction,
		FocusRatio:         ratio,
		IsTracking:         accountant.record.IsTracking,
		CurrentActivity:    accountant.status,
	}
}

// Record returns a copy of the session record.
func (accountant *Accountant) Record() model.SessionRecord {
	return accountant.record.Clone()
}

// Status returns the last classification.
func (accountant *Accountant) Status() model.ActivityStatus {
	return accountant.status
}

// IsTracking reports whether a session is running.
func (accountant *Accountant) IsTracking() bool {
	return accountant.record.IsTracking
}

// FocusWords returns the derived focus words of the session.
func (accountant *Accountant) FocusWords() []string {
	return append([]string(nil), accountant.record.FocusWords...)
}

// Pending returns the buffered, not yet persisted time.
func (accountant *Accountant) Pending() (focus, distraction time.Duration) {
	return accountant.focusPending, accountant.distractionPending
}

// WarningsShown counts distraction warnings delivered in this session.
func (accountant *Accountant) WarningsShown() int {
	return accountant.warningsShown
}

func (accountant *Accountant) accrue(now time.Time) bool {
	elapsed := now.Sub(accountant.accountedThrough)
	if elapsed <= 0 {
		if elapsed < 0 {
			accountant.logger.Debug("clock went backwards, tick ignored", "elapsed", elapsed)
		}
		return false
	}
	accountant.accountedThrough = now

	switch accountant.status {
	case model.Focus:
		accountant.focusPending += elapsed
	case model.Distraction:
		accountant.distractionPending += elapsed
	default:
		accountant.logger.Debug("unknown activity, elapsed time not accounted", "elapsed", elapsed)
	}
	return true
}

func (accountant *Accountant) flushPending() {
	accountant.record.FocusSeconds += accountant.focusPending.Seconds()
	accountant.record.DistractionSeconds += accountant.distractionPending.Seconds()
	accountant.focusPending = 0
	accountant.distractionPending = 0
	accountant.record.LastAccountedAt = accountant.accountedThrough
}

type nopNotifier struct{}

func (nopNotifier) Notify(model.NotificationKind, model.NotificationContext) {}

type neverOnBreak struct{}

func (neverOnBreak) IsOnBreak() bool { return false }
