package deadline

import (
	"sort"
	"sync"
	"time"
)

type manualDeadline struct {
	name   string
	at     time.Time
	seq    uint64
	onFire func()
}

// Manual is a Clock and Timer driven by explicit calls to Advance.
// Callbacks run on the goroutine calling Advance or Fire.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	armed map[string]manualDeadline
}

// NewManual creates a virtual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:   start,
		armed: make(map[string]manualDeadline),
	}
}

// Now returns the virtual time.
func (manual *Manual) Now() time.Time {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// Arm schedules onFire at Now()+delay, replacing any deadline with the same name.
func (manual *Manual) Arm(name string, delay time.Duration, onFire func()) {
	if delay < 0 {
		delay = 0
	}
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.seq++
	manual.armed[name] = manualDeadline{
		name:   name,
		at:     manual.now.Add(delay),
		seq:    manual.seq,
		onFire: onFire,
	}
}

// Cancel removes the named deadline.
func (manual *Manual) Cancel(name string) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	delete(manual.armed, name)
}

// Deadline returns the instant the named deadline fires at.
func (manual *Manual) Deadline(name string) (time.Time, bool) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	armed, ok := manual.armed[name]
	return armed.at, ok
}

// Set moves the clock without firing anything, as if the process was suspended.
func (manual *Manual) Set(now time.Time) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.now = now
}

// Advance moves the clock forward by delta and fires every deadline that
// falls due, in order. The clock reads the deadline instant while its callback runs.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	target := manual.now.Add(delta)
	manual.mu.Unlock()

	for {
		manual.mu.Lock()
		due, ok := manual.nextDueLocked(target)
		if !ok {
			manual.now = target
			manual.mu.Unlock()
			return
		}
		delete(manual.armed, due.name)
		if due.at.After(manual.now) {
			manual.now = due.at
		}
		manual.mu.Unlock()

		due.onFire()
	}
}

// Fire runs the named deadline immediately, regardless of its due time.
func (manual *Manual) Fire(name string) bool {
	manual.mu.Lock()
	armed, ok := manual.armed[name]
	if ok {
		delete(manual.armed, name)
	}
	manual.mu.Unlock()

	if ok {
		armed.onFire()
	}
	return ok
}

func (manual *Manual) nextDueLocked(target time.Time) (manualDeadline, bool) {
	due := make([]manualDeadline, 0, len(manual.armed))
	for _, armed := range manual.armed {
		if !armed.at.After(target) {
			due = append(due, armed)
		}
	}
	if len(due) == 0 {
		return manualDeadline{}, false
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0], true
}
