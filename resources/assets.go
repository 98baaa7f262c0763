package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

// Icon names a tray icon.
type Icon string

const (
	IconFocus       Icon = "focus"
	IconDistraction Icon = "distraction"
	IconBreak       Icon = "break"
	IconIdle        Icon = "idle"
)

const iconDir = "icons/"

//go:embed icons/*.svg
var iconFS embed.FS

var iconCache sync.Map

// TrayIcon returns the Fyne resource for icon.
func TrayIcon(icon Icon) (fyne.Resource, error) {
	return loadResource(iconFS, iconDir+string(icon)+".svg", &iconCache)
}

// MustTrayIcon returns a Fyne resource or panics on error.
func MustTrayIcon(icon Icon) fyne.Resource {
	resource, err := TrayIcon(icon)
	if err != nil {
		panic(err)
	}
	return resource
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
