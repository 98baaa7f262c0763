package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"modeon/internal/classify"
	"modeon/internal/core/model"
)

// AppName names the config and state directories.
const AppName = "modeon"

// Settings defines the daemon and client configuration.
type Settings struct {
	Host             string
	Port             int
	Token            string
	AllowedOrigins   []string
	SnapshotInterval time.Duration

	TickInterval     time.Duration
	FlushThreshold   time.Duration
	WarningDelay     time.Duration
	WarningInterval  time.Duration
	DebugLogInterval time.Duration
	IdlePauseEnabled bool
	IdleAfter        time.Duration

	Breaks model.BreakSettings

	DesktopNotifications bool
	// BreakWindow shows a countdown window during breaks under the tray.
	BreakWindow           bool
	BreakWindowFullscreen bool
	// BreakWindowOpacity is the backdrop opacity in percent.
	BreakWindowOpacity int

	Tray     bool
	LogLevel string
	StateDir string

	DistractionSites []string
	RelatedWords     map[string][]string
}

// DefaultSettings returns default settings for ModeOn.
func DefaultSettings() Settings {
	tracker := model.DefaultTrackerConfig()
	return Settings{
		Host:                 "127.0.0.1",
		Port:                 7345,
		SnapshotInterval:     5 * time.Second,
		TickInterval:         tracker.TickInterval,
		FlushThreshold:       tracker.FlushThreshold,
		WarningDelay:         tracker.WarningDelay,
		WarningInterval:      tracker.WarningInterval,
		DebugLogInterval:     tracker.DebugLogInterval,
		IdlePauseEnabled:     tracker.IdlePauseEnabled,
		IdleAfter:            tracker.IdleAfter,
		Breaks:               tracker.Breaks,
		DesktopNotifications: true,
		BreakWindow:          true,
		BreakWindowOpacity:   85,
		LogLevel:             "info",
	}
}

// Addr returns the host:port the daemon listens on.
func (settings Settings) Addr() string {
	return net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
}

// BaseURL returns the HTTP root clients talk to.
func (settings Settings) BaseURL() string {
	return "http://" + settings.Addr()
}

// TrackerConfig converts settings to the engine configuration.
func (settings Settings) TrackerConfig() model.TrackerConfig {
	config := model.DefaultTrackerConfig()
	config.TickInterval = settings.TickInterval
	config.FlushThreshold = settings.FlushThreshold
	config.WarningDelay = settings.WarningDelay
	config.WarningInterval = settings.WarningInterval
	config.DebugLogInterval = settings.DebugLogInterval
	config.IdlePauseEnabled = settings.IdlePauseEnabled
	config.IdleAfter = settings.IdleAfter
	config.Breaks = settings.Breaks
	return config
}

// ClassifyOptions returns the classifier table extensions.
func (settings Settings) ClassifyOptions() classify.Options {
	return classify.Options{
		DistractionSites: settings.DistractionSites,
		RelatedWords:     settings.RelatedWords,
	}
}

// Level parses LogLevel.
func (settings Settings) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(settings.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", settings.LogLevel, err)
	}
	return level, nil
}
