package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeon/internal/core/model"
)

type collectingSink struct {
	messages []Message
}

func (sink *collectingSink) Deliver(message Message) {
	sink.messages = append(sink.messages, message)
}

func TestComposeTexts(t *testing.T) {
	message, ok := Compose(model.NotifyBreakStart, model.NotificationContext{BreakDurationMinutes: 5})
	require.True(t, ok)
	assert.Contains(t, message.Title, "Time for a Break")
	assert.Equal(t, "Take 5 minutes to relax. You've earned it!", message.Body)

	message, ok = Compose(model.NotifyDistractionWarning, model.NotificationContext{Keyword: "golang"})
	require.True(t, ok)
	assert.Equal(t, "You're on a distracting site. Get back to golang!", message.Body)

	_, ok = Compose(model.NotificationKind("bogus"), model.NotificationContext{})
	assert.False(t, ok)
}

func TestNotifierFansOut(t *testing.T) {
	first := &collectingSink{}
	second := &collectingSink{}
	notifier := New(Multi{first, nil, second})

	notifier.Notify(model.NotifyBreakEnd, model.NotificationContext{})
	notifier.Notify(model.NotificationKind("bogus"), model.NotificationContext{})

	require.Len(t, first.messages, 1)
	require.Len(t, second.messages, 1)
	assert.Equal(t, model.NotifyBreakEnd, second.messages[0].Kind)
}

func TestLogSink(t *testing.T) {
	var buffer bytes.Buffer
	sink := NewLog(slog.New(slog.NewTextHandler(&buffer, nil)))

	New(sink).Notify(model.NotifyBreakSkipped, model.NotificationContext{})

	assert.Contains(t, buffer.String(), "kind=break_skipped")
	assert.Contains(t, buffer.String(), "component=notify")
}
