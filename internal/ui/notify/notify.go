// Package notify turns tracker notifications into user-facing messages.
package notify

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"

	"modeon/internal/core/model"
)

// Message is the rendered text of a notification.
type Message struct {
	Kind  model.NotificationKind `json:"kind"`
	Title string                 `json:"title"`
	Body  string                 `json:"message"`
}

// Compose renders kind. Unknown kinds report false.
func Compose(kind model.NotificationKind, note model.NotificationContext) (Message, bool) {
	message := Message{Kind: kind}
	switch kind {
	case model.NotifyBreakStart:
		message.Title = "🌴 Time for a Break!"
		message.Body = fmt.Sprintf("Take %d minutes to relax. You've earned it!", note.BreakDurationMinutes)
	case model.NotifyBreakEnd:
		message.Title = "⏰ Break Time Over!"
		message.Body = "Time to get back to work. Stay focused!"
	case model.NotifyBreakSkipped:
		message.Title = "🚀 Break Skipped!"
		message.Body = "Back to work mode. Stay productive!"
	case model.NotifyDistractionWarning:
		message.Title = "⚠️ Stay Focused!"
		message.Body = fmt.Sprintf("You're on a distracting site. Get back to %s!", note.Keyword)
	default:
		return Message{}, false
	}
	return message, true
}

// Sink receives rendered messages.
type Sink interface {
	Deliver(message Message)
}

// Notifier renders notifications and hands them to a Sink.
type Notifier struct {
	sink Sink
}

// New wraps sink as a model.Notifier.
func New(sink Sink) *Notifier {
	return &Notifier{sink: sink}
}

// Notify renders and delivers the notification.
func (notifier *Notifier) Notify(kind model.NotificationKind, note model.NotificationContext) {
	message, ok := Compose(kind, note)
	if !ok {
		return
	}
	notifier.sink.Deliver(message)
}

// Desktop shows messages as system notifications through a running fyne app.
type Desktop struct {
	app fyne.App
}

// NewDesktop creates a Desktop sink.
func NewDesktop(app fyne.App) *Desktop {
	return &Desktop{app: app}
}

// Deliver sends the notification on the fyne main goroutine.
func (desktop *Desktop) Deliver(message Message) {
	notification := fyne.NewNotification(message.Title, message.Body)
	fyne.Do(func() {
		desktop.app.SendNotification(notification)
	})
}

// Log writes messages to a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log sink.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "notify")}
}

// Deliver logs the message.
func (sink *Log) Deliver(message Message) {
	sink.logger.Info(message.Title, "kind", message.Kind, "message", message.Body)
}

// Multi fans a message out to every sink.
type Multi []Sink

// Deliver forwards message to each sink in order.
func (multi Multi) Deliver(message Message) {
	for _, sink := range multi {
		if sink != nil {
			sink.Deliver(message)
		}
	}
}
