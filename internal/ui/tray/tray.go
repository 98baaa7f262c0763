package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"modeon/internal/core/model"
	"modeon/resources"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnOpen        func()
	OnStartBreak  func()
	OnSkipBreak   func()
	OnStopSession func()
	OnQuit        func()
}

// Manager mirrors the tracker status in the system tray. Update must run on
// the Fyne main goroutine.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	detailItem *fyne.MenuItem
	openItem   *fyne.MenuItem
	breakItem  *fyne.MenuItem
	skipItem   *fyne.MenuItem
	stopItem   *fyne.MenuItem
	quitItem   *fyne.MenuItem
	icon       resources.Icon
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Not tracking", nil)
	manager.statusItem.Disabled = true
	manager.detailItem = fyne.NewMenuItem("", nil)
	manager.detailItem.Disabled = true

	manager.openItem = fyne.NewMenuItem("Focus session...", call(&manager.callbacks.OnOpen))
	manager.breakItem = fyne.NewMenuItem("Take a break now", call(&manager.callbacks.OnStartBreak))
	manager.skipItem = fyne.NewMenuItem("Skip break", call(&manager.callbacks.OnSkipBreak))
	manager.skipItem.Disabled = true
	manager.stopItem = fyne.NewMenuItem("Stop session", call(&manager.callbacks.OnStopSession))
	manager.stopItem.Disabled = true
	manager.quitItem = fyne.NewMenuItem("Quit", call(&manager.callbacks.OnQuit))
	manager.quitItem.IsQuit = true

	manager.refreshMenu()
	manager.setIcon(resources.IconIdle)
	return manager
}

// Update renders status into the menu and icon.
func (manager *Manager) Update(status model.TrackerStatus) {
	manager.statusItem.Label = StatusLine(status)
	manager.detailItem.Label = DetailLine(status)
	manager.breakItem.Disabled = status.BreakStatus.IsOnBreak
	manager.skipItem.Disabled = !status.BreakStatus.IsOnBreak
	manager.stopItem.Disabled = !status.IsTracking
	manager.refreshMenu()
	manager.setIcon(IconFor(status))
}

// StatusLine is the first menu row: what is being tracked and how.
func StatusLine(status model.TrackerStatus) string {
	switch {
	case status.BreakStatus.IsOnBreak:
		return "On break"
	case !status.IsTracking:
		return "Not tracking"
	case status.CurrentActivity == model.Unknown:
		return fmt.Sprintf("Tracking %q", status.FocusKeyword)
	default:
		return fmt.Sprintf("Tracking %q: %s", status.FocusKeyword, status.CurrentActivity)
	}
}

// DetailLine is the countdown row.
func DetailLine(status model.TrackerStatus) string {
	breakStatus := status.BreakStatus
	switch {
	case breakStatus.IsOnBreak:
		return "Break ends in " + FormatSeconds(breakStatus.TimeRemaining)
	case !status.IsTracking:
		return ""
	case !breakStatus.Settings.Enabled:
		return "Breaks disabled"
	case breakStatus.NextBreakIn > 0:
		return "Next break in " + FormatSeconds(breakStatus.NextBreakIn)
	default:
		return ""
	}
}

// IconFor picks the tray icon for status.
func IconFor(status model.TrackerStatus) resources.Icon {
	switch {
	case status.BreakStatus.IsOnBreak:
		return resources.IconBreak
	case !status.IsTracking:
		return resources.IconIdle
	case status.CurrentActivity == model.Distraction:
		return resources.IconDistraction
	default:
		return resources.IconFocus
	}
}

// FormatSeconds renders seconds as mm:ss, or h:mm:ss past an hour.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := seconds % 3600 / 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (manager *Manager) setIcon(icon resources.Icon) {
	if manager.app == nil || icon == manager.icon {
		return
	}
	manager.icon = icon
	manager.app.SetSystemTrayIcon(resources.MustTrayIcon(icon))
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	items := []*fyne.MenuItem{manager.statusItem}
	if manager.detailItem.Label != "" {
		items = append(items, manager.detailItem)
	}
	items = append(items,
		fyne.NewMenuItemSeparator(),
		manager.openItem,
		manager.breakItem,
		manager.skipItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		manager.quitItem,
	)
	manager.app.SetSystemTrayMenu(fyne.NewMenu("modeon", items...))
}

func call(callback *func()) func() {
	return func() {
		if *callback != nil {
			(*callback)()
		}
	}
}
