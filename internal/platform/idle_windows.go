//go:build windows

package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"modeon/internal/core/tracker"
)

var (
	user32           = syscall.NewLazyDLL("user32.dll")
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	getLastInputInfo = user32.NewProc("GetLastInputInfo")
	getTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type idleProvider struct{}

func newIdleProvider() tracker.IdleChecker {
	if getLastInputInfo.Find() != nil || getTickCount.Find() != nil {
		return unsupportedIdleProvider{}
	}
	return idleProvider{}
}

func (idleProvider) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	result, _, err := getLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	// Both counters are 32-bit milliseconds; unsigned subtraction survives wraparound.
	now, _, _ := getTickCount.Call()
	idleMillis := uint32(now) - info.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}
