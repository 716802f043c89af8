package limebar

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/opd-ai/go-limebar/internal/panel"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// DefaultPollInterval is how often the configuration file's modification
// time is checked.
const DefaultPollInterval = time.Second

// Options configures a Bar.
type Options struct {
	// PollInterval sets how often the configuration file is checked for
	// changes. Zero means DefaultPollInterval.
	PollInterval time.Duration

	// WatchConfig additionally watches the configuration directory with
	// fsnotify so edits are picked up without waiting for the next poll.
	WatchConfig bool

	// WatchDebounce sets the debounce interval for file change events.
	// Zero means DefaultWatchDebounce.
	WatchDebounce time.Duration

	// ScriptCPULimit overrides the Lua CPU instruction limit of script
	// panels. Zero means the default (10 million instructions).
	ScriptCPULimit uint64

	// ScriptMemoryLimit overrides the Lua memory limit of script panels in
	// bytes. Zero means the default (50 MB).
	ScriptMemoryLimit uint64

	// ShutdownTimeout sets the maximum time to wait for graceful shutdown.
	// Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// Logger receives reloads, configuration problems and surface errors.
	// Nil disables logging.
	Logger Logger

	// Metrics sets the metrics collector. Nil uses DefaultMetrics().
	Metrics *Metrics

	// Tracer creates a span for every panel update. Nil uses the global
	// OpenTelemetry tracer provider.
	Tracer trace.Tracer

	// Registry overrides the panel variant registry. Nil uses the built-in
	// variants.
	Registry *panel.Registry

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		PollInterval: DefaultPollInterval,
		WatchConfig:  true,
	}
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
