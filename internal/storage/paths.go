package storage

import (
	"os"
	"path/filepath"
)

// DefaultStateDir returns ~/.local/state/<appName>, respecting XDG_STATE_HOME.
func DefaultStateDir(appName string) string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appName)
}
