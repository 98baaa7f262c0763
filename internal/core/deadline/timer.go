package deadline

import (
	"sync"
	"time"
)

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Timer schedules named one-shot deadlines.
// At most one deadline per name is armed; arming again replaces the previous one.
type Timer interface {
	Arm(name string, delay time.Duration, onFire func())
	Cancel(name string)
}

type armedDeadline struct {
	timer      *time.Timer
	generation uint64
}

// Timers is a Timer backed by time.AfterFunc.
type Timers struct {
	mu         sync.Mutex
	armed      map[string]armedDeadline
	generation uint64
}

// NewTimers creates an empty wall-clock timer set.
func NewTimers() *Timers {
	return &Timers{armed: make(map[string]armedDeadline)}
}

// Arm schedules onFire after delay, cancelling any deadline with the same name.
func (timers *Timers) Arm(name string, delay time.Duration, onFire func()) {
	if delay < 0 {
		delay = 0
	}

	timers.mu.Lock()
	defer timers.mu.Unlock()

	if existing, ok := timers.armed[name]; ok {
		existing.timer.Stop()
	}
	timers.generation++
	generation := timers.generation
	timers.armed[name] = armedDeadline{
		generation: generation,
		timer: time.AfterFunc(delay, func() {
			if timers.claim(name, generation) {
				onFire()
			}
		}),
	}
}

// Cancel stops the named deadline. Cancelling an unknown name is a no-op.
func (timers *Timers) Cancel(name string) {
	timers.mu.Lock()
	defer timers.mu.Unlock()

	if existing, ok := timers.armed[name]; ok {
		existing.timer.Stop()
		delete(timers.armed, name)
	}
}

// Stop cancels every armed deadline.
func (timers *Timers) Stop() {
	timers.mu.Lock()
	defer timers.mu.Unlock()

	for name, existing := range timers.armed {
		existing.timer.Stop()
		delete(timers.armed, name)
	}
}

// Pending reports whether a deadline with the given name is armed.
func (timers *Timers) Pending(name string) bool {
	timers.mu.Lock()
	defer timers.mu.Unlock()
	_, ok := timers.armed[name]
	return ok
}

func (timers *Timers) claim(name string, generation uint64) bool {
	timers.mu.Lock()
	defer timers.mu.Unlock()

	existing, ok := timers.armed[name]
	if !ok || existing.generation != generation {
		return false
	}
	delete(timers.armed, name)
	return true
}
