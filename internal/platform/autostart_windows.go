//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (a *autostart) Enable(command LaunchCommand) error {
	if err := command.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	output, err := exec.Command("reg", "add", registryRunKey,
		"/v", a.appName, "/t", "REG_SZ", "/d", commandLine(command), "/f",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (a *autostart) Disable() error {
	enabled, err := a.Enabled()
	if err != nil || !enabled {
		return err
	}
	output, err := exec.Command("reg", "delete", registryRunKey, "/v", a.appName, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Enabled reports whether the Run key holds a value for the app.
func (a *autostart) Enabled() (bool, error) {
	err := exec.Command("reg", "query", registryRunKey, "/v", a.appName).Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, fmt.Errorf("query autostart: %w", err)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func commandLine(command LaunchCommand) string {
	parts := []string{fmt.Sprintf(`"%s"`, strings.Trim(command.Path, `"`))}
	for _, arg := range command.Args {
		if strings.ContainsAny(arg, " \t") {
			arg = `"` + arg + `"`
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
