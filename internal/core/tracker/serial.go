package tracker

import (
	"time"

	"modeon/internal/core/deadline"
)

// serialTimer runs deadline callbacks under the tracker lock. Arm and Cancel
// are only called with the lock held, so the generation map needs no lock of
// its own. A callback that lost the race against Cancel or a re-Arm while
// waiting for the lock is dropped.
type serialTimer struct {
	tracker     *Tracker
	inner       deadline.Timer
	generations map[string]uint64
	generation  uint64
}

func newSerialTimer(tracker *Tracker, inner deadline.Timer) *serialTimer {
	return &serialTimer{
		tracker:     tracker,
		inner:       inner,
		generations: make(map[string]uint64),
	}
}

func (timer *serialTimer) Arm(name string, delay time.Duration, onFire func()) {
	timer.generation++
	generation := timer.generation
	timer.generations[name] = generation

	timer.inner.Arm(name, delay, func() {
		tracker := timer.tracker
		tracker.mu.Lock()
		defer tracker.commit()

		if tracker.closed || timer.generations[name] != generation {
			return
		}
		delete(timer.generations, name)
		onFire()
	})
}

func (timer *serialTimer) Cancel(name string) {
	delete(timer.generations, name)
	timer.inner.Cancel(name)
}
