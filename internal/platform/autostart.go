package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var errEmptyCommand = errors.New("launch command is empty")

// Autostart registers the background server to launch at login.
type Autostart interface {
	Enable(command LaunchCommand) error
	Disable() error
	Enabled() (bool, error)
}

// LaunchCommand is the program started at login.
type LaunchCommand struct {
	Path string
	Args []string
}

type autostart struct {
	appName string
	homeDir func() (string, error)
	confDir func() (string, error)
}

// NewAutostart returns the login-item manager for the current OS.
func NewAutostart(appName string) Autostart {
	return &autostart{
		appName: appName,
		homeDir: os.UserHomeDir,
		confDir: os.UserConfigDir,
	}
}

func (command LaunchCommand) validate() error {
	if strings.TrimSpace(command.Path) == "" {
		return errEmptyCommand
	}
	return nil
}

// configDir returns the OS-standard configuration directory.
func (a *autostart) configDir() (string, error) {
	configDir, err := a.confDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := a.homeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func slug(appName string) string {
	name := strings.ToLower(strings.TrimSpace(appName))
	if name == "" {
		name = "modeon"
	}
	return strings.ReplaceAll(name, " ", "-")
}
