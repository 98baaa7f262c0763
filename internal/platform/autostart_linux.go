//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (a *autostart) Enable(command LaunchCommand) error {
	if err := command.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	entryPath, err := a.entryPath()
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(entryPath, []byte(buildDesktopEntry(a.appName, command)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (a *autostart) Disable() error {
	entryPath, err := a.entryPath()
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(entryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (a *autostart) Enabled() (bool, error) {
	entryPath, err := a.entryPath()
	if err != nil {
		return false, err
	}
	return fileExists(entryPath)
}

func (a *autostart) entryPath() (string, error) {
	configDir, err := a.configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(a.appName)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func buildDesktopEntry(appName string, command LaunchCommand) string {
	parts := make([]string, 0, len(command.Args)+1)
	for _, part := range append([]string{command.Path}, command.Args...) {
		if strings.ContainsAny(part, " \t\"") {
			part = `"` + strings.ReplaceAll(part, `"`, `\"`) + `"`
		}
		parts = append(parts, part)
	}

	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=%s
Comment=Focus session tracker
Exec=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`,
		appName,
		strings.Join(parts, " "),
	)
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
