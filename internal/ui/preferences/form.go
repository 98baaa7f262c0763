package preferences

import (
	"fmt"
	"strconv"
	"strings"

	"modeon/internal/core/model"
	"modeon/internal/core/session"
)

// Form holds the editable session and break values.
type Form struct {
	Keyword       string
	WorkMinutes   string
	BreakMinutes  string
	BreaksEnabled bool
}

// FormFromStatus fills the form from the running tracker.
func FormFromStatus(status model.TrackerStatus) Form {
	settings := status.BreakStatus.Settings
	return Form{
		Keyword:       status.FocusKeyword,
		WorkMinutes:   strconv.Itoa(settings.WorkDurationMinutes),
		BreakMinutes:  strconv.Itoa(settings.BreakDurationMinutes),
		BreaksEnabled: settings.Enabled,
	}
}

// WithPreset fills the break fields from preset. Custom leaves them as they are.
func (form Form) WithPreset(preset model.Preset) Form {
	settings := preset.Patch()
	if settings.IsEmpty() {
		return form
	}
	form.WorkMinutes = strconv.Itoa(*settings.WorkDurationMinutes)
	form.BreakMinutes = strconv.Itoa(*settings.BreakDurationMinutes)
	form.BreaksEnabled = *settings.Enabled
	return form
}

// Preset reports which preset the break fields currently match.
func (form Form) Preset() model.Preset {
	work, errWork := strconv.Atoi(strings.TrimSpace(form.WorkMinutes))
	breakMinutes, errBreak := strconv.Atoi(strings.TrimSpace(form.BreakMinutes))
	if errWork != nil || errBreak != nil {
		return model.PresetCustom
	}
	return model.PresetFor(model.BreakSettings{WorkDurationMinutes: work, BreakDurationMinutes: breakMinutes})
}

// FocusWordsPreview lists the words a session on the keyword would match.
func (form Form) FocusWordsPreview() string {
	words := session.FocusWords(form.Keyword)
	if len(words) == 0 {
		return "Focus words: none"
	}
	return "Focus words: " + strings.Join(words, ", ")
}

// Patch parses the break fields. Blank fields are left unchanged.
func (form Form) Patch() (model.BreakSettingsPatch, error) {
	patch := model.BreakSettingsPatch{Enabled: &form.BreaksEnabled}

	work, err := parseMinutes("work duration", form.WorkMinutes)
	if err != nil {
		return patch, err
	}
	patch.WorkDurationMinutes = work

	breakMinutes, err := parseMinutes("break duration", form.BreakMinutes)
	if err != nil {
		return patch, err
	}
	patch.BreakDurationMinutes = breakMinutes

	return patch, patch.Validate()
}

func parseMinutes(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return nil, fmt.Errorf("%s must be a positive number of minutes: %w", field, model.ErrInvalidInput)
	}
	return &parsed, nil
}
