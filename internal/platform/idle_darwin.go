//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"modeon/internal/core/tracker"
)

var hidIdleTime = regexp.MustCompile(`"HIDIdleTime"\s*=\s*(\d+)`)

type idleProvider struct {
	ioregPath string
}

func newIdleProvider() tracker.IdleChecker {
	path, err := exec.LookPath("ioreg")
	if err != nil {
		return unsupportedIdleProvider{}
	}
	return &idleProvider{ioregPath: path}
}

// IdleDuration reads HIDIdleTime, reported by IOKit in nanoseconds.
func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.ioregPath, "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	match := hidIdleTime.FindSubmatch(output)
	if match == nil {
		return 0, fmt.Errorf("HIDIdleTime missing from ioreg output: %w", tracker.ErrIdleUnsupported)
	}
	nanos, err := strconv.ParseUint(string(match[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
	}
	return time.Duration(nanos), nil
}
