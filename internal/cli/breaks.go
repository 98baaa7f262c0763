package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modeon/internal/client"
	"modeon/internal/core/model"
)

func newBreakCmd(opts *options) *cobra.Command {
	breakCmd := &cobra.Command{Use: "break", Short: "Control scheduled breaks"}

	command := func(use, short string, call func(*client.HTTPClient, context.Context) (model.BreakStatus, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := opts.newClient()
				if err != nil {
					return err
				}
				status, err := call(c, cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderBreak(status))
				return nil
			},
		}
	}

	breakCmd.AddCommand(
		command("start", "Start a break now", (*client.HTTPClient).StartBreak),
		command("end", "End the current break", (*client.HTTPClient).EndBreak),
		command("skip", "Skip the current break and get back to work", (*client.HTTPClient).SkipBreak),
		newBreakSettingsCmd(opts),
	)
	return breakCmd
}

func newBreakSettingsCmd(opts *options) *cobra.Command {
	var workMinutes, breakMinutes int
	var enabled bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change break timing; without flags prints the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var status model.BreakStatus
			if !flags.Changed("work") && !flags.Changed("break") && !flags.Changed("enabled") {
				tracker, err := c.Status(cmd.Context())
				if err != nil {
					return err
				}
				status = tracker.BreakStatus
			} else {
				patch := model.BreakSettingsPatch{}
				if flags.Changed("work") {
					patch.WorkDurationMinutes = &workMinutes
				}
				if flags.Changed("break") {
					patch.BreakDurationMinutes = &breakMinutes
				}
				if flags.Changed("enabled") {
					patch.Enabled = &enabled
				}
				if status, err = c.UpdateBreakSettings(cmd.Context(), patch); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderBreak(status))
			return nil
		},
	}
	cmd.Flags().IntVar(&workMinutes, "work", 0, "minutes of work between breaks")
	cmd.Flags().IntVar(&breakMinutes, "break", 0, "break length in minutes")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "enable scheduled breaks")
	return cmd
}
