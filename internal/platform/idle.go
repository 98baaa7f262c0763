package platform

import (
	"time"

	"modeon/internal/core/tracker"
)

// NewIdleProvider returns the idle detector for the current OS. Where input
// idleness cannot be read, IdleDuration reports tracker.ErrIdleUnsupported.
func NewIdleProvider() tracker.IdleChecker {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, tracker.ErrIdleUnsupported
}
