package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsConvert(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, "127.0.0.1:7345", settings.Addr())
	assert.Equal(t, "http://127.0.0.1:7345", settings.BaseURL())

	config := settings.TrackerConfig()
	assert.Equal(t, time.Second, config.TickInterval)
	assert.Equal(t, 5*time.Second, config.FlushThreshold)
	assert.Equal(t, 45, config.Breaks.WorkDurationMinutes)
	assert.Equal(t, 5, config.Breaks.BreakDurationMinutes)
	assert.True(t, config.Breaks.Enabled)
}

func TestLevel(t *testing.T) {
	settings := DefaultSettings()
	settings.LogLevel = "DEBUG"
	level, err := settings.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	settings.LogLevel = "loud"
	_, err = settings.Level()
	assert.Error(t, err)
}
