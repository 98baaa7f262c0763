// Package overlay shows a countdown window while a break runs.
package overlay

import (
	"time"

	"modeon/internal/core/model"
)

// View is the part of Window the Controller drives.
type View interface {
	Show(session Session)
	Hide()
	SetRemaining(remaining time.Duration)
}

// Controller opens the view when a break starts, keeps its countdown current
// and hides it when the break ends. Its methods must run on the UI goroutine.
type Controller struct {
	view       View
	visible    bool
	dismissed  bool
	breakStart time.Time
}

// NewController creates a Controller for view.
func NewController(view View) *Controller {
	return &Controller{view: view}
}

// Update renders status.
func (controller *Controller) Update(status model.TrackerStatus) {
	breakStatus := status.BreakStatus
	if !breakStatus.IsOnBreak {
		if controller.visible {
			controller.view.Hide()
		}
		controller.visible = false
		controller.dismissed = false
		return
	}

	var start time.Time
	if breakStatus.BreakStartTime != nil {
		start = *breakStatus.BreakStartTime
	}
	if !start.Equal(controller.breakStart) {
		controller.breakStart = start
		controller.dismissed = false
	}
	if controller.dismissed {
		return
	}

	remaining := time.Duration(breakStatus.TimeRemaining) * time.Second
	if !controller.visible {
		controller.view.Show(Session{Remaining: remaining, Keyword: status.FocusKeyword})
		controller.visible = true
		return
	}
	controller.view.SetRemaining(remaining)
}

// Dismiss keeps the view hidden for the rest of the current break.
func (controller *Controller) Dismiss() {
	if controller.visible {
		controller.view.Hide()
	}
	controller.visible = false
	controller.dismissed = true
}

// Visible reports whether the view is shown.
func (controller *Controller) Visible() bool {
	return controller.visible
}
