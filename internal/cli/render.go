package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"modeon/internal/client"
	"modeon/internal/core/model"
	"modeon/internal/ui/tray"
)

const (
	labelWidth = 16
	barWidth   = 24
)

var (
	colorFocus       = lipgloss.Color("#4caf50")
	colorDistraction = lipgloss.Color("#ef5350")
	colorBreak       = lipgloss.Color("#42a5f5")
	colorDimmed      = lipgloss.Color("#8a8a8a")

	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDimmed).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorDimmed).
			Width(labelWidth)

	styleOK  = lipgloss.NewStyle().Foreground(colorFocus)
	styleDim = lipgloss.NewStyle().Foreground(colorDimmed)
)

func activityColor(activity model.ActivityStatus) lipgloss.Color {
	switch activity {
	case model.Focus:
		return colorFocus
	case model.Distraction:
		return colorDistraction
	default:
		return colorDimmed
	}
}

func renderActivity(activity model.ActivityStatus) string {
	return lipgloss.NewStyle().Foreground(activityColor(activity)).Render(activity.String())
}

func renderOnOff(on bool) string {
	if on {
		return styleOK.Render("enabled")
	}
	return styleDim.Render("disabled")
}

func renderStatus(status model.TrackerStatus) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(tray.StatusLine(status)) + "\n")
	if status.IsTracking {
		writeRow(&b, "Keyword", status.FocusKeyword)
		if len(status.FocusWords) > 0 {
			writeRow(&b, "Focus words", strings.Join(status.FocusWords, ", "))
		}
		writeRow(&b, "Activity", renderActivity(status.CurrentActivity))
	}
	writeBreakRows(&b, status.BreakStatus)
	return stylePanel.Render(strings.TrimRight(b.String(), "\n"))
}

func renderStats(stats model.SessionStats) string {
	var b strings.Builder
	title := "Session"
	if stats.FocusKeyword != "" {
		title = fmt.Sprintf("Session: %s", stats.FocusKeyword)
	}
	b.WriteString(styleTitle.Render(title) + "\n")

	writeRow(&b, "Focus", formatDuration(stats.FocusSeconds))
	writeRow(&b, "Distraction", formatDuration(stats.DistractionSeconds))
	writeRow(&b, "Focus ratio", fmt.Sprintf("%s %d%%", renderBar(stats.FocusRatio), stats.FocusRatio))
	writeRow(&b, "Tracking", fmt.Sprintf("%t", stats.IsTracking))
	if stats.IsTracking {
		writeRow(&b, "Activity", renderActivity(stats.CurrentActivity))
	}
	return stylePanel.Render(strings.TrimRight(b.String(), "\n"))
}

func renderBreak(status model.BreakStatus) string {
	var b strings.Builder
	title := "Working"
	if status.IsOnBreak {
		title = lipgloss.NewStyle().Foreground(colorBreak).Bold(true).Render("On break")
	}
	b.WriteString(styleTitle.Render(title) + "\n")
	writeBreakRows(&b, status)
	return stylePanel.Render(strings.TrimRight(b.String(), "\n"))
}

func renderHistory(sessions []model.SessionSummary) string {
	if len(sessions) == 0 {
		return styleDim.Render("No finished sessions yet.")
	}

	var b strings.Builder
	header := fmt.Sprintf("%-16s  %-24s  %9s  %11s  %5s", "STOPPED", "KEYWORD", "FOCUS", "DISTRACTION", "RATIO")
	b.WriteString(styleTitle.Render(header) + "\n")
	for _, session := range sessions {
		ratio := 0
		if total := session.FocusSeconds + session.DistractionSeconds; total > 0 {
			ratio = int(100*session.FocusSeconds/total + 0.5)
		}
		fmt.Fprintf(&b, "%-16s  %-24s  %9s  %11s  %4d%%\n",
			session.StoppedAt.Local().Format("2006-01-02 15:04"),
			truncate(session.Keyword, 24),
			formatDuration(session.FocusSeconds),
			formatDuration(session.DistractionSeconds),
			ratio,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderFeedMessage turns one live feed envelope into a log line.
func renderFeedMessage(msg client.Message) string {
	stamp := styleDim.Render(time.Now().Format("15:04:05"))
	switch msg.Type {
	case "notification":
		var note struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		}
		if json.Unmarshal(msg.Payload, &note) != nil {
			return ""
		}
		return fmt.Sprintf("%s %s %s", stamp, styleTitle.Render(note.Title), note.Message)
	case "snapshot":
		var snapshot struct {
			Status model.TrackerStatus `json:"status"`
		}
		if json.Unmarshal(msg.Payload, &snapshot) != nil {
			return ""
		}
		return feedStatusLine(stamp, snapshot.Status)
	case "session_changed", "break_state_changed":
		var status model.TrackerStatus
		if json.Unmarshal(msg.Payload, &status) != nil {
			return ""
		}
		return feedStatusLine(stamp, status)
	default:
		return ""
	}
}

func feedStatusLine(stamp string, status model.TrackerStatus) string {
	line := stamp + " " + tray.StatusLine(status)
	if detail := tray.DetailLine(status); detail != "" {
		line += styleDim.Render(" · " + detail)
	}
	return line
}

func writeBreakRows(b *strings.Builder, status model.BreakStatus) {
	settings := status.Settings
	switch {
	case status.IsOnBreak:
		writeRow(b, "Break ends in", tray.FormatSeconds(status.TimeRemaining))
	case status.NextBreakIn > 0:
		writeRow(b, "Next break in", tray.FormatSeconds(status.NextBreakIn))
	}
	writeRow(b, "Breaks", fmt.Sprintf("%s, %d min work / %d min break",
		renderOnOff(settings.Enabled), settings.WorkDurationMinutes, settings.BreakDurationMinutes))
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + value + "\n")
}

func renderBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	return lipgloss.NewStyle().Foreground(colorFocus).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorDistraction).Render(strings.Repeat("░", barWidth-filled))
}

func formatDuration(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}
