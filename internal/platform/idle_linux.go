//go:build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"modeon/internal/core/tracker"
)

var mutterIdleReply = regexp.MustCompile(`uint64\s+(\d+)`)

// xprintidleProvider reads X11 input idleness.
type xprintidleProvider struct {
	path string
}

// mutterProvider asks GNOME's idle monitor, which also works under Wayland.
type mutterProvider struct {
	gdbusPath string
}

func newIdleProvider() tracker.IdleChecker {
	wayland := strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland")
	if path, err := exec.LookPath("xprintidle"); err == nil && !wayland {
		return &xprintidleProvider{path: path}
	}
	if path, err := exec.LookPath("gdbus"); err == nil {
		return &mutterProvider{gdbusPath: path}
	}
	return unsupportedIdleProvider{}
}

func (provider *xprintidleProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(strings.TrimSpace(string(output)))
}

func (provider *mutterProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.gdbusPath,
		"call", "--session",
		"--dest", "org.gnome.Mutter.IdleMonitor",
		"--object-path", "/org/gnome/Mutter/IdleMonitor/Core",
		"--method", "org.gnome.Mutter.IdleMonitor.GetIdletime",
	).Output()
	if err != nil {
		// No GNOME session bus; treat as permanent.
		return 0, fmt.Errorf("query mutter idle monitor: %v: %w", err, tracker.ErrIdleUnsupported)
	}
	match := mutterIdleReply.FindStringSubmatch(string(output))
	if match == nil {
		return 0, fmt.Errorf("unexpected idle monitor reply %q", strings.TrimSpace(string(output)))
	}
	return parseIdleMillis(match[1])
}

func parseIdleMillis(value string) (time.Duration, error) {
	idleMillis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
