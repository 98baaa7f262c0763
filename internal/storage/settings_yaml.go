package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"modeon/internal/config"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Server        yamlServer        `yaml:"server"`
	Tracker       yamlTracker       `yaml:"tracker"`
	Breaks        yamlBreaks        `yaml:"breaks"`
	Notifications yamlNotifications `yaml:"notifications"`
	Classifier    yamlClassifier    `yaml:"classifier"`
	Tray          bool              `yaml:"tray"`
	LogLevel      string            `yaml:"log_level,omitempty"`
	StateDir      string            `yaml:"state_dir,omitempty"`
}

type yamlServer struct {
	Host                    string   `yaml:"host,omitempty"`
	Port                    int      `yaml:"port,omitempty"`
	Token                   string   `yaml:"token,omitempty"`
	AllowedOrigins          []string `yaml:"allowed_origins,omitempty"`
	SnapshotIntervalSeconds int      `yaml:"snapshot_interval_seconds,omitempty"`
}

type yamlTracker struct {
	TickIntervalMillis      int   `yaml:"tick_interval_ms,omitempty"`
	FlushThresholdSeconds   int   `yaml:"flush_threshold_seconds,omitempty"`
	WarningDelaySeconds     int   `yaml:"warning_delay_seconds,omitempty"`
	WarningIntervalSeconds  int   `yaml:"warning_interval_seconds,omitempty"`
	DebugLogIntervalSeconds int   `yaml:"debug_log_interval_seconds,omitempty"`
	IdlePauseEnabled        *bool `yaml:"idle_pause_enabled,omitempty"`
	IdleAfterMinutes        int   `yaml:"idle_after_minutes,omitempty"`
}

type yamlBreaks struct {
	WorkMinutes  int   `yaml:"work_minutes,omitempty"`
	BreakMinutes int   `yaml:"break_minutes,omitempty"`
	Enabled      *bool `yaml:"enabled,omitempty"`
}

type yamlNotifications struct {
	Desktop               *bool `yaml:"desktop,omitempty"`
	BreakWindow           *bool `yaml:"break_window,omitempty"`
	BreakWindowFullscreen *bool `yaml:"break_window_fullscreen,omitempty"`
	BreakWindowOpacity    int   `yaml:"break_window_opacity,omitempty"`
}

type yamlClassifier struct {
	DistractionSites []string            `yaml:"distraction_sites,omitempty"`
	RelatedWords     map[string][]string `yaml:"related_words,omitempty"`
}

// DefaultSettingsPath returns <user config dir>/<appName>/settings.yaml.
func DefaultSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// LoadSettings reads settings from the YAML file at path.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (config.Settings, error) {
	settings := config.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes settings to the YAML file at path.
func SaveSettings(path string, settings config.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		Server: yamlServer{
			Host:                    settings.Host,
			Port:                    settings.Port,
			Token:                   settings.Token,
			AllowedOrigins:          settings.AllowedOrigins,
			SnapshotIntervalSeconds: int(settings.SnapshotInterval / time.Second),
		},
		Tracker: yamlTracker{
			TickIntervalMillis:      int(settings.TickInterval / time.Millisecond),
			FlushThresholdSeconds:   int(settings.FlushThreshold / time.Second),
			WarningDelaySeconds:     int(settings.WarningDelay / time.Second),
			WarningIntervalSeconds:  int(settings.WarningInterval / time.Second),
			DebugLogIntervalSeconds: int(settings.DebugLogInterval / time.Second),
			IdlePauseEnabled:        boolPtr(settings.IdlePauseEnabled),
			IdleAfterMinutes:        int(settings.IdleAfter / time.Minute),
		},
		Breaks: yamlBreaks{
			WorkMinutes:  settings.Breaks.WorkDurationMinutes,
			BreakMinutes: settings.Breaks.BreakDurationMinutes,
			Enabled:      boolPtr(settings.Breaks.Enabled),
		},
		Notifications: yamlNotifications{
			Desktop:               boolPtr(settings.DesktopNotifications),
			BreakWindow:           boolPtr(settings.BreakWindow),
			BreakWindowFullscreen: boolPtr(settings.BreakWindowFullscreen),
			BreakWindowOpacity:    settings.BreakWindowOpacity,
		},
		Classifier: yamlClassifier{
			DistractionSites: settings.DistractionSites,
			RelatedWords:     settings.RelatedWords,
		},
		Tray:     settings.Tray,
		LogLevel: settings.LogLevel,
		StateDir: settings.StateDir,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *config.Settings, fileData yamlSettings) {
	if fileData.Server.Host != "" {
		settings.Host = fileData.Server.Host
	}
	if fileData.Server.Port > 0 {
		settings.Port = fileData.Server.Port
	}
	settings.Token = fileData.Server.Token
	settings.AllowedOrigins = fileData.Server.AllowedOrigins
	if fileData.Server.SnapshotIntervalSeconds > 0 {
		settings.SnapshotInterval = time.Duration(fileData.Server.SnapshotIntervalSeconds) * time.Second
	}

	if fileData.Tracker.TickIntervalMillis > 0 {
		settings.TickInterval = time.Duration(fileData.Tracker.TickIntervalMillis) * time.Millisecond
	}
	if fileData.Tracker.FlushThresholdSeconds > 0 {
		settings.FlushThreshold = time.Duration(fileData.Tracker.FlushThresholdSeconds) * time.Second
	}
	if fileData.Tracker.WarningDelaySeconds > 0 {
		settings.WarningDelay = time.Duration(fileData.Tracker.WarningDelaySeconds) * time.Second
	}
	if fileData.Tracker.WarningIntervalSeconds > 0 {
		settings.WarningInterval = time.Duration(fileData.Tracker.WarningIntervalSeconds) * time.Second
	}
	if fileData.Tracker.DebugLogIntervalSeconds > 0 {
		settings.DebugLogInterval = time.Duration(fileData.Tracker.DebugLogIntervalSeconds) * time.Second
	}
	if fileData.Tracker.IdlePauseEnabled != nil {
		settings.IdlePauseEnabled = *fileData.Tracker.IdlePauseEnabled
	}
	if fileData.Tracker.IdleAfterMinutes > 0 {
		settings.IdleAfter = time.Duration(fileData.Tracker.IdleAfterMinutes) * time.Minute
	}

	if fileData.Breaks.WorkMinutes > 0 {
		settings.Breaks.WorkDurationMinutes = fileData.Breaks.WorkMinutes
	}
	if fileData.Breaks.BreakMinutes > 0 {
		settings.Breaks.BreakDurationMinutes = fileData.Breaks.BreakMinutes
	}
	if fileData.Breaks.Enabled != nil {
		settings.Breaks.Enabled = *fileData.Breaks.Enabled
	}
	if fileData.Notifications.Desktop != nil {
		settings.DesktopNotifications = *fileData.Notifications.Desktop
	}
	if fileData.Notifications.BreakWindow != nil {
		settings.BreakWindow = *fileData.Notifications.BreakWindow
	}
	if fileData.Notifications.BreakWindowFullscreen != nil {
		settings.BreakWindowFullscreen = *fileData.Notifications.BreakWindowFullscreen
	}
	if opacity := fileData.Notifications.BreakWindowOpacity; opacity > 0 && opacity <= 100 {
		settings.BreakWindowOpacity = opacity
	}

	settings.DistractionSites = fileData.Classifier.DistractionSites
	settings.RelatedWords = fileData.Classifier.RelatedWords
	settings.Tray = fileData.Tray
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	settings.StateDir = fileData.StateDir
}

func boolPtr(value bool) *bool {
	return &value
}
