package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeon/internal/client"
	"modeon/internal/core/model"
)

func TestRenderStats(t *testing.T) {
	out := renderStats(model.SessionStats{
		FocusKeyword:       "golang",
		FocusSeconds:       125.4,
		DistractionSeconds: 59,
		FocusRatio:         68,
		IsTracking:         true,
		CurrentActivity:    model.Distraction,
	})

	assert.Contains(t, out, "Session: golang")
	assert.Contains(t, out, "2m5s")
	assert.Contains(t, out, "59s")
	assert.Contains(t, out, "68%")
	assert.Contains(t, out, "distraction")
}

func TestRenderBreakCountdown(t *testing.T) {
	out := renderBreak(model.BreakStatus{
		NextBreakIn: 1500,
		Settings:    model.DefaultBreakSettings(),
	})
	assert.Contains(t, out, "Working")
	assert.Contains(t, out, "Next break in")
	assert.Contains(t, out, "25:00")
	assert.Contains(t, out, "45 min work / 5 min break")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, renderHistory(nil), "No finished sessions")

	out := renderHistory([]model.SessionSummary{{
		Keyword:            "a very long keyword that will not fit the column",
		StoppedAt:          time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		FocusSeconds:       300,
		DistractionSeconds: 100,
	}})
	assert.Contains(t, out, "KEYWORD")
	assert.Contains(t, out, "5m0s")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "…")
}

func TestRenderFeedMessage(t *testing.T) {
	payload, err := json.Marshal(map[string]string{"title": "Stay Focused!", "message": "Get back to rust!"})
	require.NoError(t, err)
	line := renderFeedMessage(client.Message{Type: "notification", Payload: payload})
	assert.Contains(t, line, "Stay Focused!")
	assert.Contains(t, line, "Get back to rust!")

	payload, err = json.Marshal(model.TrackerStatus{
		IsTracking:   true,
		FocusKeyword: "rust",
		BreakStatus:  model.BreakStatus{IsOnBreak: true, TimeRemaining: 90},
	})
	require.NoError(t, err)
	line = renderFeedMessage(client.Message{Type: "break_state_changed", Payload: payload})
	assert.Contains(t, line, "On break")
	assert.Contains(t, line, "01:30")

	assert.Empty(t, renderFeedMessage(client.Message{Type: "mystery"}))
}

func TestFormatDurationKeepsFractions(t *testing.T) {
	assert.Equal(t, "4s", formatDuration(3.5))
	assert.Equal(t, "0s", formatDuration(0))
}
