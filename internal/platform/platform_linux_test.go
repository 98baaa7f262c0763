//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutostartWritesDesktopEntry(t *testing.T) {
	dir := t.TempDir()
	a := &autostart{
		appName: "modeon",
		homeDir: func() (string, error) { return dir, nil },
		confDir: func() (string, error) { return dir, nil },
	}

	enabled, err := a.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, a.Enable(LaunchCommand{Path: "/opt/my apps/modeon", Args: []string{"serve", "--tray"}}))
	raw, err := os.ReadFile(filepath.Join(dir, "autostart", "modeon.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `Exec="/opt/my apps/modeon" serve --tray`)

	enabled, err = a.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, a.Disable())
	require.NoError(t, a.Disable())
	enabled, err = a.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestAutostartRequiresPath(t *testing.T) {
	a := NewAutostart("modeon")
	assert.ErrorIs(t, a.Enable(LaunchCommand{}), errEmptyCommand)
}

func TestParseIdleMillis(t *testing.T) {
	idle, err := parseIdleMillis("1500")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, idle)

	idle, err = parseIdleMillis("-4")
	require.NoError(t, err)
	assert.Zero(t, idle)

	_, err = parseIdleMillis("soon")
	assert.Error(t, err)
}

func TestMutterReplyPattern(t *testing.T) {
	match := mutterIdleReply.FindStringSubmatch("(uint64 42000,)\n")
	require.NotNil(t, match)
	assert.Equal(t, "42000", match[1])
}
