package limebar

import "time"

// Status represents the current state of a Bar.
type Status struct {
	// Running indicates if the bar is currently active.
	Running bool
	// StartTime is when the bar was last started (zero if never started).
	StartTime time.Time
	// UpdateCount is the number of panel updates applied since last start.
	UpdateCount uint64
	// ReloadCount is the number of configuration loads since last start.
	ReloadCount uint64
	// LastError is the most recent error encountered (nil if none).
	LastError error
	// ConfigSource is the configuration file path.
	ConfigSource string
	// Generation identifies the panel set currently shown.
	Generation string
	// Panels is the number of panels currently shown.
	Panels int
	// ConfigError is the load error shown by the error panel, nil when the
	// configuration loaded.
	ConfigError error
}

// PanelSnapshot is a point-in-time copy of one panel's state.
type PanelSnapshot struct {
	Name       string
	Type       string
	Display    string
	Tooltip    string
	Interval   time.Duration
	LastUpdate time.Time
	Busy       bool
	BusySince  time.Time
	Synthetic  bool
}

// ErrorHandler is a callback for runtime errors.
// It is called asynchronously; do not block in the handler.
type ErrorHandler func(err error)

// EventHandler is a callback for lifecycle events.
// It is called asynchronously; do not block in the handler.
type EventHandler func(event Event)

// Event represents a lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates lifecycle event types.
type EventType int

const (
	// EventStarted is emitted when the bar starts successfully.
	EventStarted EventType = iota
	// EventStopped is emitted when the bar stops.
	EventStopped
	// EventConfigReloaded is emitted after a panel set has been started.
	EventConfigReloaded
	// EventConfigError is emitted when the configuration cannot be loaded
	// and the error panel is shown instead.
	EventConfigError
	// EventError is emitted when a recoverable error occurs.
	EventError
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventConfigError:
		return "config_error"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
