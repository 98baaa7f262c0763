package breaks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeon/internal/core/deadline"
	"modeon/internal/core/model"
)

type recordingNotifier struct {
	kinds []model.NotificationKind
}

func (notifier *recordingNotifier) Notify(kind model.NotificationKind, _ model.NotificationContext) {
	notifier.kinds = append(notifier.kinds, kind)
}

func (notifier *recordingNotifier) count(kind model.NotificationKind) int {
	total := 0
	for _, recorded := range notifier.kinds {
		if recorded == kind {
			total++
		}
	}
	return total
}

type fakeHost struct {
	tracking     bool
	clearedCalls int
	resumedCalls int
}

func (host *fakeHost) IsTracking() bool      { return host.tracking }
func (host *fakeHost) ClearWarnings()        { host.clearedCalls++ }
func (host *fakeHost) ResumeClassification() { host.resumedCalls++ }

type fixture struct {
	clock     *deadline.Manual
	notifier  *recordingNotifier
	host      *fakeHost
	saves     int
	scheduler *Scheduler
}

var epoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, settings model.BreakSettings) *fixture {
	t.Helper()
	f := &fixture{
		clock:    deadline.NewManual(epoch),
		notifier: &recordingNotifier{},
		host:     &fakeHost{tracking: true},
	}
	f.scheduler = New(settings, Deps{
		Timer:    f.clock,
		Clock:    f.clock,
		Notifier: f.notifier,
		Host:     f.host,
		Persist:  func() { f.saves++ },
	})
	return f
}

func pomodoro() model.BreakSettings {
	return model.BreakSettings{WorkDurationMinutes: 25, BreakDurationMinutes: 5, Enabled: true}
}

func TestScheduledDeadlineStartsBreak(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.ScheduleNextBreak(0)
	state := f.scheduler.State()
	require.NotNil(t, state.NextBreakScheduled)
	assert.Equal(t, epoch.Add(25*time.Minute), *state.NextBreakScheduled)

	f.clock.Advance(25 * time.Minute)

	state = f.scheduler.State()
	assert.True(t, state.IsOnBreak)
	require.NotNil(t, state.BreakStartTime)
	require.NotNil(t, state.BreakEndTime)
	assert.Equal(t, *state.BreakStartTime, epoch.Add(25*time.Minute))
	assert.Equal(t, state.BreakStartTime.Add(5*time.Minute), *state.BreakEndTime)
	assert.Nil(t, state.NextBreakScheduled)
	assert.Equal(t, 1, f.host.clearedCalls)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
	_, armed := f.clock.Deadline(DeadlineBreakEnd)
	assert.True(t, armed)
}

func TestBreakEndsAndReschedules(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.StartBreak()

	f.clock.Advance(5 * time.Minute)

	state := f.scheduler.State()
	assert.False(t, state.IsOnBreak)
	assert.Nil(t, state.BreakStartTime)
	assert.Nil(t, state.BreakEndTime)
	require.NotNil(t, state.NextBreakScheduled)
	assert.Equal(t, epoch.Add(30*time.Minute), *state.NextBreakScheduled)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))
	assert.Equal(t, 1, f.host.resumedCalls)
}

func TestEndBreakWithoutTrackingDoesNotReschedule(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.StartBreak()
	f.host.tracking = false

	f.scheduler.EndBreak()

	assert.Nil(t, f.scheduler.State().NextBreakScheduled)
	assert.Equal(t, 0, f.host.resumedCalls)
	_, armed := f.clock.Deadline(DeadlineNextBreak)
	assert.False(t, armed)
}

func TestStartAndEndAreIdempotent(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.EndBreak()
	assert.Equal(t, model.BreakState{}, f.scheduler.State())
	assert.Empty(t, f.notifier.kinds)
	assert.Equal(t, 0, f.saves)

	f.scheduler.StartBreak()
	before := f.scheduler.State()
	saves := f.saves
	f.clock.Advance(time.Minute)
	f.scheduler.StartBreak()

	assert.Equal(t, before, f.scheduler.State())
	assert.Equal(t, saves, f.saves)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
}

func TestSkipBreak(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.SkipBreak()
	assert.Empty(t, f.notifier.kinds)

	f.scheduler.StartBreak()
	f.scheduler.SkipBreak()

	assert.False(t, f.scheduler.IsOnBreak())
	assert.Equal(t, []model.NotificationKind{
		model.NotifyBreakStart,
		model.NotifyBreakEnd,
		model.NotifyBreakSkipped,
	}, f.notifier.kinds)
	_, armed := f.clock.Deadline(DeadlineBreakEnd)
	assert.False(t, armed)
}

func TestScheduleReplacesPendingDeadline(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.ScheduleNextBreak(10 * time.Minute)
	f.scheduler.ScheduleNextBreak(20 * time.Minute)

	f.clock.Advance(15 * time.Minute)
	assert.False(t, f.scheduler.IsOnBreak())

	f.clock.Advance(5 * time.Minute)
	assert.True(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
}

func TestScheduleWhileOnBreakKeepsInvariant(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.StartBreak()

	f.scheduler.ScheduleNextBreak(time.Minute)

	assert.Nil(t, f.scheduler.State().NextBreakScheduled)
	_, armed := f.clock.Deadline(DeadlineNextBreak)
	assert.False(t, armed)
}

func TestDisableClearsSchedule(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.ScheduleNextBreak(0)

	disabled := false
	f.scheduler.UpdateSettings(model.BreakSettingsPatch{Enabled: &disabled})

	assert.Nil(t, f.scheduler.State().NextBreakScheduled)
	assert.False(t, f.scheduler.Settings().Enabled)
	f.clock.Advance(time.Hour)
	assert.False(t, f.scheduler.IsOnBreak())
}

func TestUpdateSettingsReschedulesWhileTracking(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.ScheduleNextBreak(0)
	f.clock.Advance(10 * time.Minute)

	work := 50
	f.scheduler.UpdateSettings(model.BreakSettingsPatch{WorkDurationMinutes: &work})

	state := f.scheduler.State()
	require.NotNil(t, state.NextBreakScheduled)
	assert.Equal(t, epoch.Add(60*time.Minute), *state.NextBreakScheduled)
	assert.Equal(t, 5, f.scheduler.Settings().BreakDurationMinutes)
}

func TestUpdateSettingsWithoutTrackingLeavesScheduleAlone(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.host.tracking = false

	work := 50
	f.scheduler.UpdateSettings(model.BreakSettingsPatch{WorkDurationMinutes: &work})

	assert.Nil(t, f.scheduler.State().NextBreakScheduled)
	assert.Equal(t, 50, f.scheduler.Settings().WorkDurationMinutes)
}

func TestStatusRoundsUp(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.ScheduleNextBreak(90*time.Second + 300*time.Millisecond)

	status := f.scheduler.Status()
	assert.False(t, status.IsOnBreak)
	assert.Equal(t, 91, status.NextBreakIn)
	assert.Equal(t, 0, status.TimeRemaining)

	f.scheduler.StartBreak()
	f.clock.Advance(4*time.Minute + 30*time.Second + 500*time.Millisecond)
	status = f.scheduler.Status()
	assert.True(t, status.IsOnBreak)
	assert.Equal(t, 30, status.TimeRemaining)
	assert.Equal(t, 0, status.NextBreakIn)
	require.NotNil(t, status.BreakStartTime)
}

func TestStatusClampsPastDeadlines(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.Restore(&model.BreakState{
		NextBreakScheduled: model.TimePtr(epoch.Add(time.Hour)),
	}, nil)
	f.clock.Set(epoch.Add(2 * time.Hour))

	assert.Equal(t, 0, f.scheduler.Status().NextBreakIn)
}

func TestRestorePastBreakEndsImmediately(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.Restore(&model.BreakState{
		IsOnBreak:      true,
		BreakStartTime: model.TimePtr(epoch.Add(-15 * time.Minute)),
		BreakEndTime:   model.TimePtr(epoch.Add(-10 * time.Minute)),
	}, nil)

	assert.False(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))

	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))
}

func TestRestoreFutureBreakRearms(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.Restore(&model.BreakState{
		IsOnBreak:      true,
		BreakStartTime: model.TimePtr(epoch.Add(-2 * time.Minute)),
		BreakEndTime:   model.TimePtr(epoch.Add(3 * time.Minute)),
	}, nil)

	assert.True(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 180, f.scheduler.Status().TimeRemaining)
	at, ok := f.clock.Deadline(DeadlineBreakEnd)
	require.True(t, ok)
	assert.Equal(t, epoch.Add(3*time.Minute), at)
	assert.Empty(t, f.notifier.kinds)
}

func TestRestorePastScheduledBreakStartsImmediately(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.Restore(&model.BreakState{
		NextBreakScheduled: model.TimePtr(epoch.Add(-time.Minute)),
	}, nil)

	assert.True(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
}

func TestRestoreFutureScheduledBreakRearms(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.Restore(&model.BreakState{
		NextBreakScheduled: model.TimePtr(epoch.Add(7 * time.Minute)),
	}, &model.BreakSettings{WorkDurationMinutes: 30, BreakDurationMinutes: 10, Enabled: true})

	assert.False(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 420, f.scheduler.Status().NextBreakIn)
	assert.Equal(t, 30, f.scheduler.Settings().WorkDurationMinutes)

	f.clock.Advance(7 * time.Minute)
	assert.True(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 600, f.scheduler.Status().TimeRemaining)
}

func TestRestoreDisabledDropsSchedule(t *testing.T) {
	f := newFixture(t, pomodoro())

	f.scheduler.Restore(&model.BreakState{
		NextBreakScheduled: model.TimePtr(epoch.Add(-time.Minute)),
	}, &model.BreakSettings{WorkDurationMinutes: 25, BreakDurationMinutes: 5, Enabled: false})

	assert.False(t, f.scheduler.IsOnBreak())
	assert.Nil(t, f.scheduler.State().NextBreakScheduled)
	assert.Empty(t, f.notifier.kinds)
}

func TestReconcileStartsOverdueBreak(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.ScheduleNextBreak(0)

	assert.False(t, f.scheduler.Reconcile())

	f.clock.Set(epoch.Add(2 * time.Hour))
	assert.True(t, f.scheduler.Reconcile())

	state := f.scheduler.State()
	assert.True(t, state.IsOnBreak)
	require.NotNil(t, state.BreakEndTime)
	assert.Equal(t, epoch.Add(2*time.Hour+5*time.Minute), *state.BreakEndTime)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
	_, armed := f.clock.Deadline(DeadlineNextBreak)
	assert.False(t, armed)

	assert.False(t, f.scheduler.Reconcile())
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
}

func TestReconcileEndsOverdueBreak(t *testing.T) {
	f := newFixture(t, pomodoro())
	f.scheduler.StartBreak()

	f.clock.Set(epoch.Add(time.Hour))
	assert.True(t, f.scheduler.Reconcile())

	assert.False(t, f.scheduler.IsOnBreak())
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))
	assert.Equal(t, 25*60, f.scheduler.Status().NextBreakIn)
	_, armed := f.clock.Deadline(DeadlineBreakEnd)
	assert.False(t, armed)
}

func TestSubscribersReceiveStateChanges(t *testing.T) {
	f := newFixture(t, pomodoro())
	events := f.scheduler.Subscribe(4)

	f.scheduler.StartBreak()
	f.scheduler.EndBreak()

	first := <-events
	assert.Equal(t, EventStateChange, first.Type)
	assert.Equal(t, StateOnBreak, first.State)
	assert.True(t, first.Status.IsOnBreak)

	second := <-events
	assert.Equal(t, StateWorking, second.State)

	f.scheduler.Close()
	_, open := <-events
	assert.False(t, open)
}
