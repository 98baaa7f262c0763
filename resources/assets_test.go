package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrayIconsAreEmbedded(t *testing.T) {
	for _, icon := range []Icon{IconFocus, IconDistraction, IconBreak, IconIdle} {
		resource, err := TrayIcon(icon)
		require.NoError(t, err, icon)
		assert.Contains(t, string(resource.Content()), "<svg", icon)
		assert.Same(t, resource, MustTrayIcon(icon))
	}
}

func TestUnknownIcon(t *testing.T) {
	_, err := TrayIcon("sparkles")
	assert.Error(t, err)
	assert.Panics(t, func() { MustTrayIcon("sparkles") })
}
