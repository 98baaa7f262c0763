package model

import (
	"fmt"
	"strings"
)

// Preset names a ready-made work/break cycle.
type Preset string

const (
	PresetPomodoro Preset = "pomodoro"
	PresetDeepWork Preset = "deepwork"
	// PresetCustom keeps whatever settings are current.
	PresetCustom Preset = "custom"
)

var presetCycles = map[Preset]BreakSettings{
	PresetPomodoro: {WorkDurationMinutes: 25, BreakDurationMinutes: 5, Enabled: true},
	PresetDeepWork: {WorkDurationMinutes: 45, BreakDurationMinutes: 15, Enabled: true},
}

// Presets lists the presets in display order.
func Presets() []Preset {
	return []Preset{PresetPomodoro, PresetDeepWork, PresetCustom}
}

// ParsePreset maps a name to a preset. "deep-work" is accepted for deepwork.
func ParsePreset(name string) (Preset, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "")
	for _, preset := range Presets() {
		if string(preset) == normalized {
			return preset, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q (want pomodoro, deepwork or custom): %w", name, ErrInvalidInput)
}

// Patch returns the settings change the preset stands for. Custom changes nothing.
func (preset Preset) Patch() BreakSettingsPatch {
	cycle, ok := presetCycles[preset]
	if !ok {
		return BreakSettingsPatch{}
	}
	return BreakSettingsPatch{
		WorkDurationMinutes:  &cycle.WorkDurationMinutes,
		BreakDurationMinutes: &cycle.BreakDurationMinutes,
		Enabled:              &cycle.Enabled,
	}
}

// PresetFor reports which preset the durations of settings match.
func PresetFor(settings BreakSettings) Preset {
	for _, preset := range Presets() {
		cycle, ok := presetCycles[preset]
		if ok && cycle.WorkDurationMinutes == settings.WorkDurationMinutes &&
			cycle.BreakDurationMinutes == settings.BreakDurationMinutes {
			return preset
		}
	}
	return PresetCustom
}

// Merge overlays the non-nil fields of other onto patch.
func (patch BreakSettingsPatch) Merge(other BreakSettingsPatch) BreakSettingsPatch {
	if other.WorkDurationMinutes != nil {
		patch.WorkDurationMinutes = other.WorkDurationMinutes
	}
	if other.BreakDurationMinutes != nil {
		patch.BreakDurationMinutes = other.BreakDurationMinutes
	}
	if other.Enabled != nil {
		patch.Enabled = other.Enabled
	}
	return patch
}

// IsEmpty reports whether the patch changes nothing.
func (patch BreakSettingsPatch) IsEmpty() bool {
	return patch.WorkDurationMinutes == nil && patch.BreakDurationMinutes == nil && patch.Enabled == nil
}
