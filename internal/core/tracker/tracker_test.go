package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeon/internal/core/breaks"
	"modeon/internal/core/deadline"
	"modeon/internal/core/model"
)

type memoryStore struct {
	mu       sync.Mutex
	snapshot model.Snapshot
	saves    int
	loadErr  error
}

func (store *memoryStore) Load(context.Context) (model.Snapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshot, store.loadErr
}

func (store *memoryStore) Save(_ context.Context, snapshot model.Snapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.snapshot = snapshot
	store.saves++
	return nil
}

func (store *memoryStore) last() model.Snapshot {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshot
}

type memoryHistory struct {
	mu        sync.Mutex
	summaries []model.SessionSummary
}

func (history *memoryHistory) Record(_ context.Context, summary model.SessionSummary) error {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.summaries = append([]model.SessionSummary{summary}, history.summaries...)
	return nil
}

func (history *memoryHistory) Recent(_ context.Context, limit int) ([]model.SessionSummary, error) {
	history.mu.Lock()
	defer history.mu.Unlock()
	if limit > len(history.summaries) {
		limit = len(history.summaries)
	}
	return append([]model.SessionSummary(nil), history.summaries[:limit]...), nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []model.NotificationKind
}

func (notifier *recordingNotifier) Notify(kind model.NotificationKind, _ model.NotificationContext) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.kinds = append(notifier.kinds, kind)
}

func (notifier *recordingNotifier) count(kind model.NotificationKind) int {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	total := 0
	for _, recorded := range notifier.kinds {
		if recorded == kind {
			total++
		}
	}
	return total
}

// urlClassifier treats a tab as on topic when its URL contains a focus word.
type urlClassifier struct{}

func (urlClassifier) IsOnTopic(tab model.Tab, focusWords []string) bool {
	for _, word := range focusWords {
		if strings.Contains(tab.URL, word) {
			return true
		}
	}
	return false
}

type fakeIdle struct {
	idle time.Duration
	err  error
}

func (checker *fakeIdle) IdleDuration() (time.Duration, error) {
	return checker.idle, checker.err
}

type fixture struct {
	clock    *deadline.Manual
	store    *memoryStore
	history  *memoryHistory
	notifier *recordingNotifier
	idle     *fakeIdle
	tracker  *Tracker
}

var epoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func testConfig() model.TrackerConfig {
	config := model.DefaultTrackerConfig()
	config.Breaks = model.BreakSettings{WorkDurationMinutes: 1, BreakDurationMinutes: 1, Enabled: true}
	config.IdleCheckInterval = time.Second
	config.IdleAfter = time.Minute
	return config
}

func newFixture(t *testing.T, config model.TrackerConfig, snapshot model.Snapshot) *fixture {
	t.Helper()
	f := &fixture{
		clock:    deadline.NewManual(epoch),
		store:    &memoryStore{snapshot: snapshot},
		history:  &memoryHistory{},
		notifier: &recordingNotifier{},
		idle:     &fakeIdle{},
	}
	f.tracker = New(config, Deps{
		Persistence: f.store,
		Notifier:    f.notifier,
		Classifier:  urlClassifier{},
		IdleChecker: f.idle,
		History:     f.history,
		Timer:       f.clock,
		Clock:       f.clock,
	})
	f.tracker.Init(context.Background())
	t.Cleanup(f.tracker.Close)
	return f
}

func (f *fixture) tick(count int, step time.Duration) {
	for i := 0; i < count; i++ {
		f.clock.Advance(step)
		f.tracker.Tick(f.clock.Now())
	}
}

func intPtr(value int) *int { return &value }

func TestStartSessionRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	ctx := context.Background()

	_, err := f.tracker.StartSession(ctx, "   ", nil)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.tracker.StartSession(ctx, "golang", &model.BreakSettingsPatch{WorkDurationMinutes: intPtr(0)})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	assert.False(t, f.tracker.Status().IsTracking)
}

func TestSessionAccountsFocusAndDistraction(t *testing.T) {
	config := testConfig()
	config.Breaks.Enabled = false
	f := newFixture(t, config, model.Snapshot{})
	ctx := context.Background()

	status, err := f.tracker.StartSession(ctx, "Golang", nil)
	require.NoError(t, err)
	assert.True(t, status.IsTracking)
	assert.Equal(t, "golang", status.FocusKeyword)

	assert.Equal(t, model.Focus, f.tracker.ReportTab(model.Tab{Title: "Go", URL: "https://golang.org/doc"}))
	f.tick(10, time.Second)
	assert.Equal(t, model.Distraction, f.tracker.ReportTab(model.Tab{Title: "Feed", URL: "https://news.example.com"}))
	f.tick(5, time.Second)

	stats := f.tracker.Stats()
	assert.InDelta(t, 10, stats.FocusSeconds, 1e-9)
	assert.InDelta(t, 5, stats.DistractionSeconds, 1e-9)
	assert.Equal(t, 67, stats.FocusRatio)
	assert.Equal(t, model.Distraction, stats.CurrentActivity)

	saved := f.store.last()
	require.NotNil(t, saved.Session)
	assert.InDelta(t, 5, saved.Session.DistractionSeconds, 1e-9)
	require.NotNil(t, saved.Settings)
	assert.False(t, saved.Settings.Enabled)
}

func TestScheduledBreakSuspendsAccounting(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)
	f.tracker.ReportTab(model.Tab{URL: "https://golang.org"})

	f.tick(60, time.Second)

	status := f.tracker.Status()
	assert.True(t, status.BreakStatus.IsOnBreak)
	assert.Equal(t, 60, status.BreakStatus.TimeRemaining)
	assert.Equal(t, model.Unknown, status.CurrentActivity)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))
	assert.InDelta(t, 60, f.tracker.Stats().FocusSeconds, 1e-9)

	f.tracker.ReportTab(model.Tab{URL: "https://golang.org/pkg"})
	f.tick(30, time.Second)
	assert.InDelta(t, 60, f.tracker.Stats().FocusSeconds, 1e-9)
	assert.Equal(t, model.Unknown, f.tracker.Status().CurrentActivity)

	f.tick(30, time.Second)
	status = f.tracker.Status()
	assert.False(t, status.BreakStatus.IsOnBreak)
	assert.Equal(t, 60, status.BreakStatus.NextBreakIn)
	assert.Equal(t, model.Focus, status.CurrentActivity)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))

	f.tick(10, time.Second)
	f.tracker.Flush()
	assert.InDelta(t, 70, f.tracker.Stats().FocusSeconds, 1e-9)
}

func TestSkipBreakResumesWork(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)

	status := f.tracker.StartBreakNow()
	require.True(t, status.IsOnBreak)

	status = f.tracker.SkipBreak()
	assert.False(t, status.IsOnBreak)
	assert.Equal(t, 60, status.NextBreakIn)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakSkipped))
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))
}

func TestStopSessionRecordsHistory(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	ctx := context.Background()
	_, err := f.tracker.StartSession(ctx, "golang", nil)
	require.NoError(t, err)
	f.tracker.ReportTab(model.Tab{URL: "https://golang.org"})
	f.tick(3, time.Second)

	stats, err := f.tracker.StopSession(ctx)
	require.NoError(t, err)
	assert.False(t, stats.IsTracking)
	assert.InDelta(t, 3, stats.FocusSeconds, 1e-9)
	assert.Zero(t, stats.BreakStatus.NextBreakIn)

	f.clock.Advance(5 * time.Minute)
	assert.Zero(t, f.notifier.count(model.NotifyBreakStart))

	summaries, err := f.tracker.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "golang", summaries[0].Keyword)
	assert.InDelta(t, 3, summaries[0].FocusSeconds, 1e-9)
	assert.NotEmpty(t, summaries[0].ID)
	assert.Equal(t, epoch.Add(3*time.Second), summaries[0].StoppedAt)
}

func TestStartingNewSessionRecordsPrevious(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	ctx := context.Background()

	_, err := f.tracker.StartSession(ctx, "golang", nil)
	require.NoError(t, err)
	_, err = f.tracker.StartSession(ctx, "rust", nil)
	require.NoError(t, err)

	summaries, err := f.tracker.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "golang", summaries[0].Keyword)
	assert.Equal(t, "rust", f.tracker.Status().FocusKeyword)
}

func TestInitEndsBreakThatPassedWhileStopped(t *testing.T) {
	settings := model.BreakSettings{WorkDurationMinutes: 25, BreakDurationMinutes: 5, Enabled: true}
	snapshot := model.Snapshot{
		Session: &model.SessionRecord{Keyword: "golang", FocusSeconds: 90, IsTracking: true},
		Breaks: &model.BreakState{
			IsOnBreak:      true,
			BreakStartTime: model.TimePtr(epoch.Add(-15 * time.Minute)),
			BreakEndTime:   model.TimePtr(epoch.Add(-10 * time.Minute)),
		},
		Settings: &settings,
	}
	f := newFixture(t, testConfig(), snapshot)

	status := f.tracker.Status()
	assert.True(t, status.IsTracking)
	assert.False(t, status.BreakStatus.IsOnBreak)
	assert.Equal(t, 25*60, status.BreakStatus.NextBreakIn)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))
	assert.InDelta(t, 90, f.tracker.Stats().FocusSeconds, 1e-9)

	saved := f.store.last()
	require.NotNil(t, saved.Breaks)
	assert.False(t, saved.Breaks.IsOnBreak)
}

func TestInitSurvivesLoadFailure(t *testing.T) {
	f := &fixture{clock: deadline.NewManual(epoch)}
	store := &memoryStore{loadErr: errors.New("corrupt")}
	tracker := New(testConfig(), Deps{Persistence: store, Timer: f.clock, Clock: f.clock})
	t.Cleanup(tracker.Close)

	tracker.Init(context.Background())

	status := tracker.Status()
	assert.False(t, status.IsTracking)
	assert.Equal(t, 1, status.BreakStatus.Settings.WorkDurationMinutes)
}

func TestIdlePausesClassification(t *testing.T) {
	config := testConfig()
	config.IdlePauseEnabled = true
	config.Breaks.Enabled = false
	f := newFixture(t, config, model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)
	f.tracker.ReportTab(model.Tab{URL: "https://golang.org"})

	f.idle.idle = 2 * time.Minute
	f.tick(1, time.Second)
	assert.Equal(t, model.Unknown, f.tracker.Status().CurrentActivity)

	f.tick(10, time.Second)
	f.tracker.Flush()
	assert.InDelta(t, 1, f.tracker.Stats().FocusSeconds, 1e-9)

	f.idle.idle = 0
	f.tick(1, time.Second)
	assert.Equal(t, model.Focus, f.tracker.Status().CurrentActivity)
}

func TestTabReportEndsIdlePause(t *testing.T) {
	config := testConfig()
	config.IdlePauseEnabled = true
	config.Breaks.Enabled = false
	f := newFixture(t, config, model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)

	f.idle.idle = 2 * time.Minute
	f.tick(1, time.Second)
	require.Equal(t, model.Unknown, f.tracker.Status().CurrentActivity)

	assert.Equal(t, model.Focus, f.tracker.ReportTab(model.Tab{URL: "https://golang.org"}))
	assert.Equal(t, model.Focus, f.tracker.Status().CurrentActivity)
}

func TestTickReconcilesOverdueBreak(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)

	f.clock.Set(epoch.Add(10 * time.Minute))
	f.tracker.Tick(f.clock.Now())

	status := f.tracker.Status().BreakStatus
	assert.True(t, status.IsOnBreak)
	assert.Equal(t, 60, status.TimeRemaining)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakStart))

	f.clock.Set(epoch.Add(20 * time.Minute))
	f.tracker.Tick(f.clock.Now())

	status = f.tracker.Status().BreakStatus
	assert.False(t, status.IsOnBreak)
	assert.Equal(t, 60, status.NextBreakIn)
	assert.Equal(t, 1, f.notifier.count(model.NotifyBreakEnd))
	saved := f.store.last()
	require.NotNil(t, saved.Breaks)
	assert.False(t, saved.Breaks.IsOnBreak)
}

func TestIdleUnsupportedDisablesChecks(t *testing.T) {
	config := testConfig()
	config.IdlePauseEnabled = true
	f := newFixture(t, config, model.Snapshot{})
	f.idle.err = ErrIdleUnsupported

	f.tick(1, time.Second)
	f.idle.err = nil
	f.idle.idle = time.Hour
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)
	f.tracker.ReportTab(model.Tab{URL: "https://golang.org"})
	f.tick(2, time.Second)

	assert.Equal(t, model.Focus, f.tracker.Status().CurrentActivity)
}

func TestDistractionWarningRunsUnderTracker(t *testing.T) {
	config := testConfig()
	config.Breaks.Enabled = false
	f := newFixture(t, config, model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)
	f.tracker.ReportTab(model.Tab{URL: "https://video.example.com"})

	f.clock.Advance(80 * time.Second)

	assert.Equal(t, 3, f.notifier.count(model.NotifyDistractionWarning))
}

func TestSubscribersReceiveEvents(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	events := f.tracker.Subscribe(8)

	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)

	event := <-events
	assert.Equal(t, EventSessionChanged, event.Type)
	assert.True(t, event.Status.IsTracking)

	f.tracker.StartBreakNow()
	select {
	case event = <-events:
		assert.Equal(t, EventBreakStateChanged, event.Type)
		assert.True(t, event.Status.BreakStatus.IsOnBreak)
	case <-time.After(time.Second):
		t.Fatal("no break event")
	}
}

func TestCommandsAfterCloseFail(t *testing.T) {
	f := newFixture(t, testConfig(), model.Snapshot{})
	_, err := f.tracker.StartSession(context.Background(), "golang", nil)
	require.NoError(t, err)
	events := f.tracker.Subscribe(1)

	f.tracker.Close()

	_, open := <-events
	assert.False(t, open)
	_, err = f.tracker.StartSession(context.Background(), "rust", nil)
	require.ErrorIs(t, err, ErrClosed)
	_, armed := f.clock.Deadline(breaks.DeadlineNextBreak)
	assert.False(t, armed)

	saved := f.store.last()
	require.NotNil(t, saved.Session)
	assert.Equal(t, "golang", saved.Session.Keyword)
}
