package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeon/internal/core/model"
)

func TestFormFromStatus(t *testing.T) {
	form := FormFromStatus(model.TrackerStatus{
		FocusKeyword: "rust",
		BreakStatus:  model.BreakStatus{Settings: model.DefaultBreakSettings()},
	})
	assert.Equal(t, Form{Keyword: "rust", WorkMinutes: "45", BreakMinutes: "5", BreaksEnabled: true}, form)
}

func TestFormPatch(t *testing.T) {
	patch, err := Form{WorkMinutes: " 30 ", BreakMinutes: "", BreaksEnabled: false}.Patch()
	require.NoError(t, err)
	require.NotNil(t, patch.WorkDurationMinutes)
	assert.Equal(t, 30, *patch.WorkDurationMinutes)
	assert.Nil(t, patch.BreakDurationMinutes)
	require.NotNil(t, patch.Enabled)
	assert.False(t, *patch.Enabled)
}

func TestFormPatchRejectsBadMinutes(t *testing.T) {
	for _, value := range []string{"0", "-5", "ten"} {
		_, err := Form{BreakMinutes: value}.Patch()
		assert.ErrorIs(t, err, model.ErrInvalidInput, value)
	}
}

func TestFormWithPreset(t *testing.T) {
	form := Form{Keyword: "rust", WorkMinutes: "30", BreakMinutes: "7"}
	assert.Equal(t, model.PresetCustom, form.Preset())

	deep := form.WithPreset(model.PresetDeepWork)
	assert.Equal(t, Form{Keyword: "rust", WorkMinutes: "45", BreakMinutes: "15", BreaksEnabled: true}, deep)
	assert.Equal(t, model.PresetDeepWork, deep.Preset())

	assert.Equal(t, form, form.WithPreset(model.PresetCustom))
	assert.Equal(t, model.PresetPomodoro, Form{WorkMinutes: " 25", BreakMinutes: "5 "}.Preset())
}

func TestFocusWordsPreview(t *testing.T) {
	assert.Equal(t, "Focus words: programming, rust, rust programming", Form{Keyword: "Rust Programming"}.FocusWordsPreview())
	assert.Equal(t, "Focus words: none", Form{Keyword: "  "}.FocusWordsPreview())
}
