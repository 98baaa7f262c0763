package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreset(t *testing.T) {
	cases := map[string]Preset{
		"pomodoro":  PresetPomodoro,
		" Deepwork": PresetDeepWork,
		"deep-work": PresetDeepWork,
		"custom":    PresetCustom,
	}
	for name, want := range cases {
		got, err := ParsePreset(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParsePreset("marathon")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPresetPatch(t *testing.T) {
	settings := PresetDeepWork.Patch().Apply(BreakSettings{WorkDurationMinutes: 10, BreakDurationMinutes: 2})
	assert.Equal(t, BreakSettings{WorkDurationMinutes: 45, BreakDurationMinutes: 15, Enabled: true}, settings)

	assert.True(t, PresetCustom.Patch().IsEmpty())
	assert.Equal(t, PresetPomodoro, PresetFor(PresetPomodoro.Patch().Apply(BreakSettings{})))
	assert.Equal(t, PresetCustom, PresetFor(BreakSettings{WorkDurationMinutes: 30, BreakDurationMinutes: 5}))
}

func TestPatchMerge(t *testing.T) {
	work := 50
	merged := PresetPomodoro.Patch().Merge(BreakSettingsPatch{WorkDurationMinutes: &work})

	settings := merged.Apply(BreakSettings{})
	assert.Equal(t, 50, settings.WorkDurationMinutes)
	assert.Equal(t, 5, settings.BreakDurationMinutes)
	assert.True(t, settings.Enabled)
}
