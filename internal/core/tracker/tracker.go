package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"modeon/internal/core/breaks"
	"modeon/internal/core/deadline"
	"modeon/internal/core/model"
	"modeon/internal/core/session"
)

const saveTimeout = 5 * time.Second

// Deps are the collaborators of a Tracker. Persistence, History, IdleChecker
// and Classifier may be nil.
type Deps struct {
	Persistence model.Persistence
	Notifier    model.Notifier
	Classifier  model.Classifier
	IdleChecker IdleChecker
	History     model.HistoryRecorder
	Timer       deadline.Timer
	Clock       deadline.Clock
	Logger      *slog.Logger
}

// Tracker owns the session accountant and the break scheduler and
// serializes every operation on them behind one lock.
type Tracker struct {
	mu         sync.Mutex
	config     model.TrackerConfig
	accountant *session.Accountant
	scheduler  *breaks.Scheduler
	timer      *serialTimer
	inner      deadline.Timer
	clock      deadline.Clock

	persistence model.Persistence
	classifier  model.Classifier
	idleChecker IdleChecker
	history     model.HistoryRecorder
	logger      *slog.Logger

	dirty         bool
	closed        bool
	lastTab       *model.Tab
	idle          bool
	lastIdleCheck time.Time
	lastDebugLog  time.Time

	eventsMu    sync.Mutex
	events      []chan Event
	forwardDone chan struct{}
}

// New wires a Tracker. Call Init before using it.
func New(config model.TrackerConfig, deps Deps) *Tracker {
	defaults := model.DefaultTrackerConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.DebugLogInterval <= 0 {
		config.DebugLogInterval = defaults.DebugLogInterval
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = defaults.IdleAfter
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = defaults.IdleCheckInterval
	}
	if config.Breaks.WorkDurationMinutes <= 0 || config.Breaks.BreakDurationMinutes <= 0 {
		config.Breaks = defaults.Breaks
	}
	if deps.Timer == nil {
		deps.Timer = deadline.NewTimers()
	}
	if deps.Clock == nil {
		deps.Clock = deadline.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	tracker := &Tracker{
		config:      config,
		inner:       deps.Timer,
		clock:       deps.Clock,
		persistence: deps.Persistence,
		classifier:  deps.Classifier,
		idleChecker: deps.IdleChecker,
		history:     deps.History,
		logger:      deps.Logger.With("component", "tracker"),
		forwardDone: make(chan struct{}),
	}
	tracker.timer = newSerialTimer(tracker, deps.Timer)

	markDirty := func() { tracker.dirty = true }
	tracker.scheduler = breaks.New(config.Breaks, breaks.Deps{
		Timer:    tracker.timer,
		Clock:    deps.Clock,
		Notifier: deps.Notifier,
		Host:     host{tracker: tracker},
		Persist:  markDirty,
		Logger:   deps.Logger,
	})
	tracker.accountant = session.New(session.Config{
		FlushThreshold:  config.FlushThreshold,
		WarningDelay:    config.WarningDelay,
		WarningInterval: config.WarningInterval,
	}, session.Deps{
		Timer:    tracker.timer,
		Clock:    deps.Clock,
		Notifier: deps.Notifier,
		Breaks:   tracker.scheduler,
		Persist:  markDirty,
		Logger:   deps.Logger,
	})

	go tracker.forwardBreakEvents(tracker.scheduler.Subscribe(16))
	return tracker
}

// Init restores persisted state. Deadlines that passed while the process was
// not running are reconciled immediately.
func (tracker *Tracker) Init(ctx context.Context) {
	tracker.mu.Lock()
	defer tracker.commit()

	now := tracker.clock.Now()
	tracker.lastDebugLog = now
	if tracker.persistence == nil {
		return
	}

	snapshot, err := tracker.persistence.Load(ctx)
	if err != nil {
		tracker.logger.Error("load state failed, starting fresh", "error", err)
		return
	}
	tracker.accountant.Restore(snapshot.Session)
	tracker.scheduler.Restore(snapshot.Breaks, snapshot.Settings)
	tracker.logger.Info("state restored",
		"tracking", tracker.accountant.IsTracking(),
		"keyword", tracker.accountant.Record().Keyword,
		"on_break", tracker.scheduler.IsOnBreak(),
	)
}

// Subscribe registers a new observer channel.
func (tracker *Tracker) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	tracker.eventsMu.Lock()
	tracker.events = append(tracker.events, ch)
	tracker.eventsMu.Unlock()
	return ch
}

// Run drives the tick loop until ctx is cancelled, then flushes the session.
func (tracker *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(tracker.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tracker.Flush()
			return nil
		case <-ticker.C:
			tracker.Tick(tracker.clock.Now())
		}
	}
}

// Tick reconciles overdue break deadlines, accounts elapsed time up to now
// and runs the periodic checks.
func (tracker *Tracker) Tick(now time.Time) {
	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return
	}

	tracker.scheduler.Reconcile()
	tracker.accountant.Tick(now)
	tracker.checkIdleLocked(now)
	tracker.debugLogLocked(now)
}

// Flush writes buffered time and saves the state.
func (tracker *Tracker) Flush() {
	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return
	}
	tracker.accountant.Flush(tracker.clock.Now())
	tracker.dirty = true
}

// Close flushes the session, cancels deadlines and closes observers.
func (tracker *Tracker) Close() {
	tracker.mu.Lock()
	if tracker.closed {
		tracker.mu.Unlock()
		return
	}
	tracker.accountant.Flush(tracker.clock.Now())
	tracker.accountant.ClearWarnings()
	tracker.dirty = true
	tracker.saveIfDirtyLocked()
	tracker.scheduler.Close()
	tracker.closed = true
	tracker.mu.Unlock()

	<-tracker.forwardDone
	if stopper, ok := tracker.inner.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	tracker.eventsMu.Lock()
	events := tracker.events
	tracker.events = nil
	tracker.eventsMu.Unlock()
	for _, ch := range events {
		close(ch)
	}
}

// StartSession begins tracking keyword. A previous running session is
// stopped and recorded first. The optional patch updates the break settings.
func (tracker *Tracker) StartSession(ctx context.Context, keyword string, patch *model.BreakSettingsPatch) (model.TrackerStatus, error) {
	if session.NormalizeKeyword(keyword) == "" {
		return model.TrackerStatus{}, fmt.Errorf("start session: keyword is empty: %w", model.ErrInvalidInput)
	}
	if patch != nil {
		if err := patch.Validate(); err != nil {
			return model.TrackerStatus{}, fmt.Errorf("start session: %w", err)
		}
	}

	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return model.TrackerStatus{}, ErrClosed
	}

	if tracker.accountant.IsTracking() {
		tracker.stopLocked(ctx)
	}
	tracker.accountant.Start(keyword)
	tracker.idle = false
	if patch != nil {
		tracker.scheduler.UpdateSettings(*patch)
	} else {
		tracker.scheduler.ScheduleNextBreak(0)
	}
	tracker.classifyLocked()

	tracker.emitLocked(EventSessionChanged)
	return tracker.statusLocked(), nil
}

// StopSession stops tracking and returns the final statistics.
func (tracker *Tracker) StopSession(ctx context.Context) (model.SessionStats, error) {
	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return model.SessionStats{}, ErrClosed
	}

	if tracker.accountant.IsTracking() {
		tracker.stopLocked(ctx)
		tracker.emitLocked(EventSessionChanged)
	}
	return tracker.statsLocked(), nil
}

// Stats returns the session statistics with the break status attached.
func (tracker *Tracker) Stats() model.SessionStats {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.statsLocked()
}

// Status returns the short tracking status.
func (tracker *Tracker) Status() model.TrackerStatus {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.statusLocked()
}

// UpdateBreakSettings merges patch into the break settings.
func (tracker *Tracker) UpdateBreakSettings(patch model.BreakSettingsPatch) (model.BreakStatus, error) {
	if err := patch.Validate(); err != nil {
		return model.BreakStatus{}, fmt.Errorf("update break settings: %w", err)
	}

	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return model.BreakStatus{}, ErrClosed
	}
	tracker.scheduler.UpdateSettings(patch)
	return tracker.scheduler.Status(), nil
}

// StartBreakNow starts a break immediately.
func (tracker *Tracker) StartBreakNow() model.BreakStatus {
	return tracker.breakCommand(tracker.scheduler.StartBreak)
}

// EndBreakNow ends the current break.
func (tracker *Tracker) EndBreakNow() model.BreakStatus {
	return tracker.breakCommand(tracker.scheduler.EndBreak)
}

// SkipBreak ends the current break early.
func (tracker *Tracker) SkipBreak() model.BreakStatus {
	return tracker.breakCommand(tracker.scheduler.SkipBreak)
}

// ReportTab records the active tab and classifies it. A report counts as
// user activity and ends an idle pause.
func (tracker *Tracker) ReportTab(tab model.Tab) model.ActivityStatus {
	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return model.Unknown
	}

	tracker.lastTab = &tab
	if tracker.idle {
		tracker.idle = false
		tracker.logger.Info("tab reported, user active again")
	}
	return tracker.classifyLocked()
}

// CheckCurrentTab classifies the last reported tab again.
func (tracker *Tracker) CheckCurrentTab() model.ActivityStatus {
	tracker.mu.Lock()
	defer tracker.commit()
	if tracker.closed {
		return model.Unknown
	}
	return tracker.classifyLocked()
}

// History returns the most recent finished sessions, newest first.
func (tracker *Tracker) History(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	if tracker.history == nil {
		return nil, nil
	}
	summaries, err := tracker.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return summaries, nil
}

func (tracker *Tracker) breakCommand(command func()) model.BreakStatus {
	tracker.mu.Lock()
	defer tracker.commit()
	if !tracker.closed {
		command()
	}
	return tracker.scheduler.Status()
}

func (tracker *Tracker) stopLocked(ctx context.Context) {
	now := tracker.clock.Now()
	tracker.accountant.Stop(now)
	tracker.scheduler.CancelSchedule()
	tracker.idle = false

	if tracker.history == nil {
		return
	}
	record := tracker.accountant.Record()
	summary := model.SessionSummary{
		ID:                 uuid.NewString(),
		Keyword:            record.Keyword,
		StartedAt:          record.StartedAt,
		StoppedAt:          now,
		FocusSeconds:       record.FocusSeconds,
		DistractionSeconds: record.DistractionSeconds,
	}
	if err := tracker.history.Record(ctx, summary); err != nil {
		tracker.logger.Error("record session history failed", "error", err)
	}
}

func (tracker *Tracker) classifyLocked() model.ActivityStatus {
	previous := tracker.accountant.Status()
	if tracker.lastTab == nil || tracker.classifier == nil || tracker.idle ||
		!tracker.accountant.IsTracking() || tracker.scheduler.IsOnBreak() {
		return previous
	}

	status := model.Distraction
	if tracker.classifier.IsOnTopic(*tracker.lastTab, tracker.accountant.FocusWords()) {
		status = model.Focus
	}
	tracker.accountant.RecordClassification(status)
	if status != previous {
		tracker.logger.Debug("activity changed", "from", previous, "to", status, "url", tracker.lastTab.URL)
		tracker.emitLocked(EventSessionChanged)
	}
	return status
}

func (tracker *Tracker) checkIdleLocked(now time.Time) {
	if !tracker.config.IdlePauseEnabled || tracker.idleChecker == nil {
		return
	}
	if !tracker.lastIdleCheck.IsZero() && now.Sub(tracker.lastIdleCheck) < tracker.config.IdleCheckInterval {
		return
	}
	tracker.lastIdleCheck = now

	idleDuration, err := tracker.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			tracker.config.IdlePauseEnabled = false
			tracker.logger.Warn("idle detection unavailable, idle pause disabled", "error", err)
			return
		}
		tracker.logger.Debug("idle check failed", "error", err)
		return
	}

	idle := idleDuration >= tracker.config.IdleAfter
	if idle == tracker.idle {
		return
	}
	tracker.idle = idle
	if idle {
		tracker.logger.Info("user idle, accounting paused", "idle", idleDuration.Round(time.Second))
		tracker.accountant.RecordClassification(model.Unknown)
		tracker.emitLocked(EventSessionChanged)
		return
	}
	tracker.logger.Info("user active again")
	tracker.classifyLocked()
}

func (tracker *Tracker) debugLogLocked(now time.Time) {
	if now.Sub(tracker.lastDebugLog) < tracker.config.DebugLogInterval {
		return
	}
	tracker.lastDebugLog = now
	if !tracker.accountant.IsTracking() {
		return
	}

	focus, distraction := tracker.accountant.Pending()
	record := tracker.accountant.Record()
	tracker.logger.Debug("tracking",
		"keyword", record.Keyword,
		"activity", tracker.accountant.Status(),
		"focus_seconds", record.FocusSeconds,
		"distraction_seconds", record.DistractionSeconds,
		"focus_pending", focus,
		"distraction_pending", distraction,
		"on_break", tracker.scheduler.IsOnBreak(),
	)
}

func (tracker *Tracker) statsLocked() model.SessionStats {
	stats := tracker.accountant.Stats()
	stats.BreakStatus = tracker.scheduler.Status()
	return stats
}

func (tracker *Tracker) statusLocked() model.TrackerStatus {
	return model.TrackerStatus{
		IsTracking:      tracker.accountant.IsTracking(),
		FocusKeyword:    tracker.accountant.Record().Keyword,
		FocusWords:      tracker.accountant.FocusWords(),
		CurrentActivity: tracker.accountant.Status(),
		BreakStatus:     tracker.scheduler.Status(),
	}
}

func (tracker *Tracker) snapshotLocked() model.Snapshot {
	breakState := tracker.scheduler.State()
	settings := tracker.scheduler.Settings()
	snapshot := model.Snapshot{Breaks: &breakState, Settings: &settings}

	record := tracker.accountant.Record()
	if record.Keyword != "" || record.IsTracking {
		snapshot.Session = &record
	}
	return snapshot
}

// commit saves pending changes and releases the lock.
func (tracker *Tracker) commit() {
	tracker.saveIfDirtyLocked()
	tracker.mu.Unlock()
}

func (tracker *Tracker) saveIfDirtyLocked() {
	if !tracker.dirty {
		return
	}
	tracker.dirty = false
	if tracker.persistence == nil || tracker.closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := tracker.persistence.Save(ctx, tracker.snapshotLocked()); err != nil {
		tracker.logger.Error("save state failed", "error", err)
	}
}

func (tracker *Tracker) emitLocked(eventType EventType) {
	tracker.broadcast(Event{
		Type:   eventType,
		Status: tracker.statusLocked(),
		At:     tracker.clock.Now(),
	})
}

func (tracker *Tracker) broadcast(event Event) {
	tracker.eventsMu.Lock()
	defer tracker.eventsMu.Unlock()
	for _, ch := range tracker.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func (tracker *Tracker) forwardBreakEvents(events <-chan breaks.Event) {
	defer close(tracker.forwardDone)
	for event := range events {
		tracker.mu.Lock()
		status := tracker.statusLocked()
		tracker.mu.Unlock()

		tracker.broadcast(Event{
			Type:   EventBreakStateChanged,
			Status: status,
			At:     event.At,
		})
	}
}

// host lets the scheduler reach the session without owning it.
type host struct {
	tracker *Tracker
}

func (host host) IsTracking() bool {
	return host.tracker.accountant.IsTracking()
}

func (host host) ClearWarnings() {
	host.tracker.accountant.Suspend(host.tracker.clock.Now())
}

func (host host) ResumeClassification() {
	host.tracker.accountant.Resume(host.tracker.clock.Now())
	host.tracker.classifyLocked()
}
