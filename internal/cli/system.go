package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modeon/internal/config"
	"modeon/internal/platform"
	"modeon/internal/storage"
)

func newAutostartCmd(opts *options) *cobra.Command {
	autostartCmd := &cobra.Command{Use: "autostart", Short: "Launch the server at login"}
	login := platform.NewAutostart(config.AppName)

	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Start `modeon serve --tray` at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			args := []string{"serve", "--tray"}
			if opts.configPath != "" {
				args = append(args, "--config", opts.configPath)
			}
			if err := login.Enable(platform.LaunchCommand{Path: execPath, Args: args}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("autostart enabled"))
			return nil
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Stop launching at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := login.Disable(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("autostart disabled"))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether autostart is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enabled, err := login.Enabled()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderOnOff(enabled))
			return nil
		},
	}

	autostartCmd.AddCommand(enableCmd, disableCmd, statusCmd)
	return autostartCmd
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Inspect or create the settings file"}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.settingsPath()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.settingsPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat settings file: %w", err)
			}
			if err := storage.SaveSettings(path, config.DefaultSettings()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("wrote "+path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	configCmd.AddCommand(pathCmd, initCmd)
	return configCmd
}
