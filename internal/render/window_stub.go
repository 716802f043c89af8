//go:build noebiten

package render

import (
	"context"
	"errors"

	"github.com/opd-ai/go-limebar/internal/config"
)

// ErrWindowUnavailable is returned by Run in builds without Ebiten.
var ErrWindowUnavailable = errors.New("window surface not available in noebiten builds")

// WindowAvailable reports whether this build includes the window surface.
const WindowAvailable = false

// ErrorHandler receives errors the window cannot return to a caller.
type ErrorHandler func(err error)

// WindowSettings are the bar-wide settings the window lays out with.
type WindowSettings struct {
	Title          string
	Height         int
	Location       config.BarLocation
	PanelAlignment config.VerticalAlignment
}

// SettingsFrom extracts window settings from a loaded configuration.
func SettingsFrom(cfg config.Config) WindowSettings {
	return WindowSettings{
		Title:          "limebar",
		Height:         cfg.BarHeight,
		Location:       cfg.BarLocation,
		PanelAlignment: cfg.PanelAlignment,
	}
}

// Window records surface calls like Headless; it cannot be opened.
type Window struct {
	*Headless
}

// NewWindow returns a window that records its view but never opens.
func NewWindow(WindowSettings) *Window {
	return &Window{Headless: NewHeadless()}
}

// SetErrorHandler is a no-op in noebiten builds.
func (w *Window) SetErrorHandler(ErrorHandler) {}

// ApplySettings is a no-op in noebiten builds.
func (w *Window) ApplySettings(config.Config) {}

// Run always fails in noebiten builds.
func (w *Window) Run(context.Context) error {
	return ErrWindowUnavailable
}

// Running always reports false in noebiten builds.
func (w *Window) Running() bool { return false }
