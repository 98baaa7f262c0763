package session

import (
	"modeon/internal/core/model"
)

const (
	// DeadlineFirstWarning fires once after the user turned to a distraction.
	DeadlineFirstWarning = "distraction-warning"
	// DeadlineRepeatWarning re-arms itself until the distraction ends.
	DeadlineRepeatWarning = "distraction-warning-repeat"
)

func (accountant *Accountant) startWarnings() {
	accountant.clearWarningDeadlines()
	accountant.timer.Arm(DeadlineFirstWarning, accountant.config.WarningDelay, accountant.onFirstWarning)
}

func (accountant *Accountant) onFirstWarning() {
	if !accountant.warnable() {
		return
	}
	accountant.warn()
	accountant.timer.Arm(DeadlineRepeatWarning, accountant.config.WarningInterval, accountant.onRepeatWarning)
}

func (accountant *Accountant) onRepeatWarning() {
	if !accountant.warnable() {
		return
	}
	accountant.warn()
	accountant.timer.Arm(DeadlineRepeatWarning, accountant.config.WarningInterval, accountant.onRepeatWarning)
}

func (accountant *Accountant) warnable() bool {
	return accountant.record.IsTracking &&
		accountant.status == model.Distraction &&
		!accountant.breaks.IsOnBreak()
}

func (accountant *Accountant) warn() {
	accountant.warningsShown++
	accountant.notifier.Notify(model.NotifyDistractionWarning, model.NotificationContext{
		Keyword: accountant.record.Keyword,
	})
}

func (accountant *Accountant) clearWarningDeadlines() {
	accountant.timer.Cancel(DeadlineFirstWarning)
	accountant.timer.Cancel(DeadlineRepeatWarning)
}
