package breaks

import (
	"log/slog"
	"sync"
	"time"

	"modeon/internal/core/deadline"
	"modeon/internal/core/model"
)

// Host exposes the tracking session to the scheduler.
type Host interface {
	IsTracking() bool
	ClearWarnings()
	ResumeClassification()
}

// Deps are the collaborators of a Scheduler. Nil fields get inert defaults.
type Deps struct {
	Timer    deadline.Timer
	Clock    deadline.Clock
	Notifier model.Notifier
	Host     Host
	Persist  func()
	Logger   *slog.Logger
}

// Scheduler is a state machine that manages the work/break cycle.
// It does no locking of its own state; callers serialize access.
type Scheduler struct {
	settings model.BreakSettings
	state    model.BreakState

	timer    deadline.Timer
	clock    deadline.Clock
	notifier model.Notifier
	host     Host
	persist  func()
	logger   *slog.Logger

	mu     sync.Mutex
	events []chan Event
}

// New creates a Scheduler in the working state with the provided settings.
func New(settings model.BreakSettings, deps Deps) *Scheduler {
	if deps.Timer == nil {
		deps.Timer = deadline.NewTimers()
	}
	if deps.Clock == nil {
		deps.Clock = deadline.SystemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Host == nil {
		deps.Host = idleHost{}
	}
	if deps.Persist == nil {
		deps.Persist = func() {}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Scheduler{
		settings: settings,
		timer:    deps.Timer,
		clock:    deps.Clock,
		notifier: deps.Notifier,
		host:     deps.Host,
		persist:  deps.Persist,
		logger:   deps.Logger.With("component", "breaks"),
	}
}

// Subscribe registers a new observer channel.
func (scheduler *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	scheduler.mu.Lock()
	scheduler.events = append(scheduler.events, ch)
	scheduler.mu.Unlock()
	return ch
}

// Close cancels pending deadlines and closes observers.
func (scheduler *Scheduler) Close() {
	scheduler.timer.Cancel(DeadlineNextBreak)
	scheduler.timer.Cancel(DeadlineBreakEnd)

	scheduler.mu.Lock()
	events := scheduler.events
	scheduler.events = nil
	scheduler.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// IsOnBreak reports whether a break is in progress.
func (scheduler *Scheduler) IsOnBreak() bool {
	return scheduler.state.IsOnBreak
}

// Settings returns the current break settings.
func (scheduler *Scheduler) Settings() model.BreakSettings {
	return scheduler.settings
}

// State returns a copy of the break state.
func (scheduler *Scheduler) State() model.BreakState {
	return scheduler.state.Clone()
}

// Restore loads persisted state and reconciles deadlines that passed while
// the process was not running.
func (scheduler *Scheduler) Restore(state *model.BreakState, settings *model.BreakSettings) {
	if settings != nil {
		scheduler.settings = *settings
	}
	if state != nil {
		scheduler.state = state.Clone()
	}
	if scheduler.state.IsOnBreak {
		scheduler.state.NextBreakScheduled = nil
	}
	if scheduler.Reconcile() {
		return
	}

	now := scheduler.clock.Now()
	if scheduler.state.IsOnBreak {
		remaining := scheduler.state.BreakEndTime.Sub(now)
		scheduler.timer.Arm(DeadlineBreakEnd, remaining, scheduler.EndBreak)
		scheduler.logger.Info("break resumed", "remaining", remaining.Round(time.Second))
		return
	}
	if next := scheduler.state.NextBreakScheduled; next != nil {
		remaining := next.Sub(now)
		scheduler.timer.Arm(DeadlineNextBreak, remaining, scheduler.StartBreak)
		scheduler.logger.Info("next break restored", "in", remaining.Round(time.Second))
	}
}

// Reconcile applies deadlines whose wall-clock time has passed without the
// timer firing, as happens across a process restart or a host suspend.
// It reports whether the state changed.
func (scheduler *Scheduler) Reconcile() bool {
	now := scheduler.clock.Now()

	if scheduler.state.IsOnBreak {
		end := scheduler.state.BreakEndTime
		if end != nil && end.After(now) {
			return false
		}
		scheduler.logger.Info("break end overdue, ending break")
		scheduler.EndBreak()
		return true
	}

	next := scheduler.state.NextBreakScheduled
	if next == nil {
		return false
	}
	if !scheduler.settings.Enabled {
		scheduler.timer.Cancel(DeadlineNextBreak)
		scheduler.state.NextBreakScheduled = nil
		scheduler.persist()
		return true
	}
	if next.After(now) {
		return false
	}
	scheduler.logger.Info("scheduled break overdue, starting break", "late", now.Sub(*next).Round(time.Second))
	scheduler.StartBreak()
	return true
}

// ScheduleNextBreak arms the next break after delay, or after the configured
// work duration when delay is not positive.
func (scheduler *Scheduler) ScheduleNextBreak(delay time.Duration) {
	scheduler.scheduleNext(delay)
	scheduler.persist()
}

// CancelSchedule drops any pending break without touching the settings.
func (scheduler *Scheduler) CancelSchedule() {
	scheduler.timer.Cancel(DeadlineNextBreak)
	if scheduler.state.NextBreakScheduled == nil {
		return
	}
	scheduler.state.NextBreakScheduled = nil
	scheduler.persist()
}

// StartBreak enters the break phase. It is a no-op while already on break.
func (scheduler *Scheduler) StartBreak() {
	if scheduler.state.IsOnBreak {
		return
	}

	now := scheduler.clock.Now()
	duration := scheduler.settings.BreakDuration()
	scheduler.state.IsOnBreak = true
	scheduler.state.BreakStartTime = model.TimePtr(now)
	scheduler.state.BreakEndTime = model.TimePtr(now.Add(duration))
	scheduler.state.LastWorkSessionEnd = model.TimePtr(now)
	scheduler.state.NextBreakScheduled = nil
	scheduler.timer.Cancel(DeadlineNextBreak)

	scheduler.host.ClearWarnings()
	scheduler.notify(model.NotifyBreakStart)
	scheduler.timer.Arm(DeadlineBreakEnd, duration, scheduler.EndBreak)
	scheduler.persist()

	scheduler.logger.Info("break started", "minutes", scheduler.settings.BreakDurationMinutes)
	scheduler.emit(EventStateChange, now)
}

// EndBreak returns to the working phase. It is a no-op while working.
func (scheduler *Scheduler) EndBreak() {
	if !scheduler.state.IsOnBreak {
		return
	}

	now := scheduler.clock.Now()
	scheduler.state.IsOnBreak = false
	scheduler.state.BreakStartTime = nil
	scheduler.state.BreakEndTime = nil
	scheduler.timer.Cancel(DeadlineBreakEnd)

	scheduler.notify(model.NotifyBreakEnd)
	tracking := scheduler.host.IsTracking()
	if tracking {
		scheduler.scheduleNext(0)
	}
	scheduler.persist()
	if tracking {
		scheduler.host.ResumeClassification()
	}

	scheduler.logger.Info("break ended")
	scheduler.emit(EventStateChange, now)
}

// SkipBreak ends the current break early.
func (scheduler *Scheduler) SkipBreak() {
	if !scheduler.state.IsOnBreak {
		return
	}
	scheduler.EndBreak()
	scheduler.notify(model.NotifyBreakSkipped)
}

// UpdateSettings merges patch into the settings and reschedules when needed.
func (scheduler *Scheduler) UpdateSettings(patch model.BreakSettingsPatch) {
	scheduler.settings = patch.Apply(scheduler.settings)

	if !scheduler.settings.Enabled {
		scheduler.timer.Cancel(DeadlineNextBreak)
		scheduler.state.NextBreakScheduled = nil
	} else if scheduler.host.IsTracking() && !scheduler.state.IsOnBreak {
		scheduler.scheduleNext(0)
	}
	scheduler.persist()

	scheduler.logger.Info("break settings updated",
		"work_minutes", scheduler.settings.WorkDurationMinutes,
		"break_minutes", scheduler.settings.BreakDurationMinutes,
		"enabled", scheduler.settings.Enabled,
	)
	scheduler.emit(EventSettingsChange, scheduler.clock.Now())
}

// Status returns the remaining break or work time, in whole seconds rounded up.
func (scheduler *Scheduler) Status() model.BreakStatus {
	now := scheduler.clock.Now()
	status := model.BreakStatus{
		IsOnBreak: scheduler.state.IsOnBreak,
		Settings:  scheduler.settings,
	}
	if scheduler.state.BreakStartTime != nil {
		status.BreakStartTime = model.TimePtr(*scheduler.state.BreakStartTime)
	}
	if scheduler.state.IsOnBreak && scheduler.state.BreakEndTime != nil {
		status.TimeRemaining = ceilSeconds(scheduler.state.BreakEndTime.Sub(now))
	}
	if !scheduler.state.IsOnBreak && scheduler.state.NextBreakScheduled != nil {
		status.NextBreakIn = ceilSeconds(scheduler.state.NextBreakScheduled.Sub(now))
	}
	return status
}

func (scheduler *Scheduler) scheduleNext(delay time.Duration) {
	scheduler.timer.Cancel(DeadlineNextBreak)

	if !scheduler.settings.Enabled {
		scheduler.state.NextBreakScheduled = nil
		scheduler.logger.Debug("breaks disabled, nothing scheduled")
		return
	}
	if scheduler.state.IsOnBreak {
		scheduler.logger.Debug("on break, next break is scheduled when it ends")
		return
	}

	if delay <= 0 {
		delay = scheduler.settings.WorkDuration()
	}
	scheduler.state.NextBreakScheduled = model.TimePtr(scheduler.clock.Now().Add(delay))
	scheduler.timer.Arm(DeadlineNextBreak, delay, scheduler.StartBreak)
	scheduler.logger.Debug("next break scheduled", "in", delay)
}

func (scheduler *Scheduler) notify(kind model.NotificationKind) {
	scheduler.notifier.Notify(kind, model.NotificationContext{
		BreakDurationMinutes: scheduler.settings.BreakDurationMinutes,
	})
}

func (scheduler *Scheduler) emit(eventType EventType, at time.Time) {
	state := StateWorking
	if scheduler.state.IsOnBreak {
		state = StateOnBreak
	}
	event := Event{
		Type:   eventType,
		State:  state,
		Status: scheduler.Status(),
		At:     at,
	}

	scheduler.mu.Lock()
	events := append([]chan Event(nil), scheduler.events...)
	scheduler.mu.Unlock()

	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}

func ceilSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

type nopNotifier struct{}

func (nopNotifier) Notify(model.NotificationKind, model.NotificationContext) {}

type idleHost struct{}

func (idleHost) IsTracking() bool      { return false }
func (idleHost) ClearWarnings()        {}
func (idleHost) ResumeClassification() {}
