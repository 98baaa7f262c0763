package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modeon/internal/client"
	"modeon/internal/core/model"
)

func newStartCmd(opts *options) *cobra.Command {
	var workMinutes, breakMinutes int
	var noBreaks bool
	var presetName string

	cmd := &cobra.Command{
		Use:   "start <keyword...>",
		Short: "Start a focus session on a keyword",
		Long: "Start a focus session on a keyword.\n\n" +
			"--preset pomodoro runs 25 min work / 5 min break, --preset deepwork 45 / 15.\n" +
			"--work, --break and --no-breaks override the preset.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := startPatch(cmd, presetName, workMinutes, breakMinutes, noBreaks)
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			status, err := c.StartSession(cmd.Context(), strings.Join(args, " "), patch)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderStatus(status))
			return nil
		},
	}
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "pomodoro, deepwork or custom")
	cmd.Flags().IntVar(&workMinutes, "work", 0, "minutes of work between breaks")
	cmd.Flags().IntVar(&breakMinutes, "break", 0, "break length in minutes")
	cmd.Flags().BoolVar(&noBreaks, "no-breaks", false, "disable scheduled breaks")
	return cmd
}

// startPatch builds the session settings from the preset and explicit flags.
// It returns nil when nothing was requested.
func startPatch(cmd *cobra.Command, presetName string, workMinutes, breakMinutes int, noBreaks bool) (*model.BreakSettingsPatch, error) {
	flags := cmd.Flags()
	patch := model.BreakSettingsPatch{}
	if flags.Changed("preset") {
		preset, err := model.ParsePreset(presetName)
		if err != nil {
			return nil, err
		}
		patch = preset.Patch()
	}
	if flags.Changed("work") {
		patch.WorkDurationMinutes = &workMinutes
	}
	if flags.Changed("break") {
		patch.BreakDurationMinutes = &breakMinutes
	}
	if flags.Changed("no-breaks") {
		enabled := !noBreaks
		patch.Enabled = &enabled
	}
	if patch.IsEmpty() {
		return nil, nil
	}
	return &patch, nil
}

func newStopCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the current session and print its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			stats, err := c.StopSession(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is being tracked and the break countdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			status, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderStatus(status))
			return nil
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show focus and distraction totals for the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			sessions, err := c.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderHistory(sessions))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show")
	return cmd
}

func newTabCmd(opts *options) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "tab <url>",
		Short: "Report the active tab and print its classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			activity, err := c.ReportTab(cmd.Context(), model.Tab{Title: title, URL: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderActivity(activity))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "tab title")
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Classify the last reported tab again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			activity, err := c.CheckTab(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderActivity(activity))
			return nil
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live status updates until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := opts.loadSettings()
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), settings)
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			wsURL, err := c.WebSocketURL()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return client.NewWSClient(wsURL, c.Token(), logger).Watch(cmd.Context(), func(msg client.Message) {
				if line := renderFeedMessage(msg); line != "" {
					_, _ = fmt.Fprintln(out, line)
				}
			})
		},
	}
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
