package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"modeon/internal/client"
	"modeon/internal/config"
	"modeon/internal/storage"
)

// Execute runs the modeon command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	serverURL  string
	token      string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Focus session tracker with scheduled breaks",
		Long:          "modeon tracks how long you stay on topic while browsing, warns when you drift, and schedules breaks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default <user config dir>/modeon/settings.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides settings)")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "server base URL for client commands (default from settings)")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "API token for client commands (default from settings)")

	root.AddCommand(
		newServeCmd(opts),
		newStartCmd(opts),
		newStopCmd(opts),
		newStatusCmd(opts),
		newStatsCmd(opts),
		newHistoryCmd(opts),
		newTabCmd(opts),
		newCheckCmd(opts),
		newWatchCmd(opts),
		newBreakCmd(opts),
		newAutostartCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func (opts *options) settingsPath() (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return storage.DefaultSettingsPath(config.AppName)
}

func (opts *options) loadSettings() (config.Settings, error) {
	path, err := opts.settingsPath()
	if err != nil {
		return config.Settings{}, err
	}
	settings, err := storage.LoadSettings(path)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.logLevel != "" {
		settings.LogLevel = opts.logLevel
	}
	return settings, nil
}

func (opts *options) newClient() (*client.HTTPClient, error) {
	settings, err := opts.loadSettings()
	if err != nil {
		return nil, err
	}
	baseURL := settings.BaseURL()
	if opts.serverURL != "" {
		baseURL = opts.serverURL
	}
	token := settings.Token
	if opts.token != "" {
		token = opts.token
	}
	return client.NewHTTPClient(baseURL, token), nil
}

func newLogger(w io.Writer, settings config.Settings) (*slog.Logger, error) {
	level, err := settings.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
