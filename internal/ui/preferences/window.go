package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"modeon/internal/core/model"
)

// Actions are invoked from the window's buttons. Returned errors are shown
// in the window.
type Actions struct {
	OnStart      func(keyword string, patch model.BreakSettingsPatch) error
	OnSaveBreaks func(patch model.BreakSettingsPatch) error
}

// Window is the session window opened from the tray.
type Window struct {
	window       fyne.Window
	actions      Actions
	keyword      *widget.Entry
	workMinutes  *widget.Entry
	breakMinutes *widget.Entry
	breaks       *widget.Check
	preset       *widget.Select
	preview      *widget.Label
	message      *widget.Label
	syncing      bool
}

// New creates the session window. It starts hidden.
func New(app fyne.App, actions Actions) *Window {
	window := app.NewWindow("modeon")

	prefs := &Window{
		window:       window,
		actions:      actions,
		keyword:      widget.NewEntry(),
		workMinutes:  widget.NewEntry(),
		breakMinutes: widget.NewEntry(),
		breaks:       widget.NewCheck("Scheduled breaks", nil),
		preview:      widget.NewLabel(""),
		message:      widget.NewLabel(""),
	}
	prefs.preset = widget.NewSelect(presetOptions(), prefs.handlePreset)
	prefs.keyword.SetPlaceHolder("e.g. rust programming")
	prefs.keyword.OnChanged = func(string) { prefs.preview.SetText(prefs.form().FocusWordsPreview()) }
	prefs.workMinutes.OnChanged = func(string) { prefs.syncPreset() }
	prefs.breakMinutes.OnChanged = func(string) { prefs.syncPreset() }
	prefs.preview.Wrapping = fyne.TextWrapWord
	prefs.message.Wrapping = fyne.TextWrapWord

	form := container.NewVBox(
		widget.NewLabelWithStyle("Focus session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Keyword", prefs.keyword),
			widget.NewFormItem("Preset", prefs.preset),
			widget.NewFormItem("Work (min)", prefs.workMinutes),
			widget.NewFormItem("Break (min)", prefs.breakMinutes),
		),
		prefs.breaks,
		prefs.preview,
		prefs.message,
	)

	startButton := widget.NewButton("Start session", prefs.handleStart)
	startButton.Importance = widget.HighImportance
	saveButton := widget.NewButton("Save breaks", prefs.handleSave)
	closeButton := widget.NewButton("Close", window.Hide)
	buttons := container.NewHBox(startButton, saveButton, layout.NewSpacer(), closeButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(420, 340))
	return prefs
}

// Show fills the window from status and displays it.
func (prefs *Window) Show(status model.TrackerStatus) {
	prefs.setForm(FormFromStatus(status))
	prefs.message.SetText("")
	prefs.window.Show()
	prefs.window.RequestFocus()
}

func (prefs *Window) form() Form {
	return Form{
		Keyword:       prefs.keyword.Text,
		WorkMinutes:   prefs.workMinutes.Text,
		BreakMinutes:  prefs.breakMinutes.Text,
		BreaksEnabled: prefs.breaks.Checked,
	}
}

func (prefs *Window) setForm(form Form) {
	prefs.syncing = true
	prefs.keyword.SetText(form.Keyword)
	prefs.workMinutes.SetText(form.WorkMinutes)
	prefs.breakMinutes.SetText(form.BreakMinutes)
	prefs.breaks.SetChecked(form.BreaksEnabled)
	prefs.syncing = false
	prefs.syncPreset()
	prefs.preview.SetText(form.FocusWordsPreview())
}

// syncPreset selects the preset matching the typed durations.
func (prefs *Window) syncPreset() {
	if prefs.syncing {
		return
	}
	prefs.syncing = true
	prefs.preset.SetSelected(string(prefs.form().Preset()))
	prefs.syncing = false
}

func (prefs *Window) handlePreset(selected string) {
	if prefs.syncing {
		return
	}
	preset, err := model.ParsePreset(selected)
	if err != nil || preset == model.PresetCustom {
		return
	}
	prefs.setForm(prefs.form().WithPreset(preset))
}

func presetOptions() []string {
	presets := model.Presets()
	options := make([]string, 0, len(presets))
	for _, preset := range presets {
		options = append(options, string(preset))
	}
	return options
}

func (prefs *Window) handleStart() {
	form := prefs.form()
	patch, err := form.Patch()
	if err == nil && prefs.actions.OnStart != nil {
		err = prefs.actions.OnStart(form.Keyword, patch)
	}
	if err != nil {
		prefs.message.SetText(err.Error())
		return
	}
	prefs.window.Hide()
}

func (prefs *Window) handleSave() {
	patch, err := prefs.form().Patch()
	if err == nil && prefs.actions.OnSaveBreaks != nil {
		err = prefs.actions.OnSaveBreaks(patch)
	}
	if err != nil {
		prefs.message.SetText(err.Error())
		return
	}
	prefs.message.SetText("Break settings saved.")
}
