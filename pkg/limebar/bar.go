package limebar

import (
	"fmt"
	"path/filepath"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/reconcile"
)

// Surface receives the panels to display. RebuildView replaces the visible
// panels; RefreshView updates one panel's texts. Both are called from the
// bar's coordinating goroutine only.
type Surface = reconcile.Surface

// Descriptor describes one panel to a Surface.
type Descriptor = reconcile.Descriptor

// SettingsApplier is implemented by surfaces that lay out according to the
// bar-wide settings (height, edge, vertical alignment). ApplySettings is
// called before every rebuild that follows a configuration load.
type SettingsApplier interface {
	ApplySettings(cfg config.Config)
}

// Bar is a running status strip. It is safe for concurrent use from
// multiple goroutines.
type Bar interface {
	// Start loads the configuration, starts every panel and begins polling
	// the configuration file. It returns immediately; the bar runs on its
	// own goroutines. Returns an error if already running.
	Start() error

	// Stop stops every panel and waits for in-flight work to finish, up to
	// the shutdown timeout. Safe to call multiple times.
	Stop() error

	// Reload stops the current panels, reloads the configuration and
	// starts the new panels, regardless of whether the file changed. It
	// returns the load error, if any; the error panel is shown in that case.
	Reload() error

	// IsRunning returns true if the bar is currently running.
	IsRunning() bool

	// Status returns detailed status information about the bar.
	Status() Status

	// Panels returns a snapshot of the displayed panels in order.
	Panels() []PanelSnapshot

	// SetErrorHandler registers a callback for runtime errors.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Health returns a health check result, including stalled panels.
	Health() HealthCheck

	// Metrics returns the metrics collector for this bar.
	Metrics() *Metrics
}

// New creates a bar for the configuration file at configPath rendering to
// surface. An empty path means config.DefaultConfigFile; a nil surface keeps
// the panels headless. The file is not read until Start; a missing or broken
// file is shown as an error panel rather than returned.
func New(configPath string, surface Surface, opts *Options) (Bar, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}
	if configPath == "" {
		configPath = config.DefaultConfigFile
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	b := &barImpl{
		path:    abs,
		source:  configPath,
		surface: surface,
		opts:    *opts,
	}
	b.init()
	return b, nil
}
