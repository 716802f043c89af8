package limebar

import (
	"expvar"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-limebar/internal/scheduler"
)

// Metrics collects bar metrics and exposes them through expvar at
// /debug/vars once RegisterExpvar is called. It also receives scheduling
// events as a scheduler.Observer.
//
// Thread-safe for concurrent use.
type Metrics struct {
	starts        atomic.Int64
	stops         atomic.Int64
	configReloads atomic.Int64
	configErrors  atomic.Int64
	updates       atomic.Int64
	updateErrors  atomic.Int64
	skippedTicks  atomic.Int64
	rebuilds      atomic.Int64
	refreshes     atomic.Int64
	surfaceErrors atomic.Int64
	errorsTotal   atomic.Int64
	eventsEmitted atomic.Int64

	updateLatencyNs    atomic.Int64
	updateLatencyCount atomic.Int64
	renderLatencyNs    atomic.Int64
	renderLatencyCount atomic.Int64

	running      atomic.Int32
	activePanels atomic.Int32

	registered atomic.Bool
}

var _ scheduler.Observer = (*Metrics)(nil)

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under limebar_* names. Safe to call
// multiple times; subsequent calls are no-ops.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	counters := map[string]*atomic.Int64{
		"limebar_starts_total":         &m.starts,
		"limebar_stops_total":          &m.stops,
		"limebar_config_reloads_total": &m.configReloads,
		"limebar_config_errors_total":  &m.configErrors,
		"limebar_updates_total":        &m.updates,
		"limebar_update_errors_total":  &m.updateErrors,
		"limebar_skipped_ticks_total":  &m.skippedTicks,
		"limebar_rebuilds_total":       &m.rebuilds,
		"limebar_refreshes_total":      &m.refreshes,
		"limebar_surface_errors_total": &m.surfaceErrors,
		"limebar_errors_total":         &m.errorsTotal,
		"limebar_events_emitted_total": &m.eventsEmitted,
	}
	for name, c := range counters {
		c := c
		expvar.Publish(name, expvar.Func(func() any { return c.Load() }))
	}

	expvar.Publish("limebar_running", expvar.Func(func() any { return m.running.Load() }))
	expvar.Publish("limebar_active_panels", expvar.Func(func() any { return m.activePanels.Load() }))
	expvar.Publish("limebar_update_latency_avg_ms", expvar.Func(func() any {
		return float64(safeDivide(m.updateLatencyNs.Load(), m.updateLatencyCount.Load())) / 1e6
	}))
	expvar.Publish("limebar_render_latency_avg_ms", expvar.Func(func() any {
		return float64(safeDivide(m.renderLatencyNs.Load(), m.renderLatencyCount.Load())) / 1e6
	}))
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Starts        int64
	Stops         int64
	ConfigReloads int64
	ConfigErrors  int64
	Updates       int64
	UpdateErrors  int64
	SkippedTicks  int64
	Rebuilds      int64
	Refreshes     int64
	SurfaceErrors int64
	ErrorsTotal   int64
	EventsEmitted int64

	Running      bool
	ActivePanels int

	UpdateLatencyAvg time.Duration
	RenderLatencyAvg time.Duration
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Starts:        m.starts.Load(),
		Stops:         m.stops.Load(),
		ConfigReloads: m.configReloads.Load(),
		ConfigErrors:  m.configErrors.Load(),
		Updates:       m.updates.Load(),
		UpdateErrors:  m.updateErrors.Load(),
		SkippedTicks:  m.skippedTicks.Load(),
		Rebuilds:      m.rebuilds.Load(),
		Refreshes:     m.refreshes.Load(),
		SurfaceErrors: m.surfaceErrors.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		EventsEmitted: m.eventsEmitted.Load(),

		Running:      m.running.Load() > 0,
		ActivePanels: int(m.activePanels.Load()),

		UpdateLatencyAvg: safeDivide(m.updateLatencyNs.Load(), m.updateLatencyCount.Load()),
		RenderLatencyAvg: safeDivide(m.renderLatencyNs.Load(), m.renderLatencyCount.Load()),
	}
}

// PanelStarted implements scheduler.Observer.
func (m *Metrics) PanelStarted(string) { m.activePanels.Add(1) }

// PanelStopped implements scheduler.Observer.
func (m *Metrics) PanelStopped(string) { m.activePanels.Add(-1) }

// UpdateSkipped implements scheduler.Observer.
func (m *Metrics) UpdateSkipped(string) { m.skippedTicks.Add(1) }

// UpdateFinished implements scheduler.Observer.
func (m *Metrics) UpdateFinished(_ string, elapsed time.Duration, err error) {
	m.updates.Add(1)
	if err != nil {
		m.updateErrors.Add(1)
	}
	m.updateLatencyNs.Add(elapsed.Nanoseconds())
	m.updateLatencyCount.Add(1)
}

// IncrementStarts records a start operation.
func (m *Metrics) IncrementStarts() { m.starts.Add(1) }

// IncrementStops records a stop operation.
func (m *Metrics) IncrementStops() { m.stops.Add(1) }

// IncrementConfigReloads records a configuration load, successful or not.
func (m *Metrics) IncrementConfigReloads() { m.configReloads.Add(1) }

// IncrementConfigErrors records a configuration load that failed.
func (m *Metrics) IncrementConfigErrors() { m.configErrors.Add(1) }

// IncrementErrors records an error occurrence.
func (m *Metrics) IncrementErrors() { m.errorsTotal.Add(1) }

// IncrementEventsEmitted records an event emission.
func (m *Metrics) IncrementEventsEmitted() { m.eventsEmitted.Add(1) }

// RecordRender records one reconciliation pushed to the surface.
func (m *Metrics) RecordRender(rebuilt bool, d time.Duration, err error) {
	if rebuilt {
		m.rebuilds.Add(1)
	} else {
		m.refreshes.Add(1)
	}
	if err != nil {
		m.surfaceErrors.Add(1)
	}
	m.renderLatencyNs.Add(d.Nanoseconds())
	m.renderLatencyCount.Add(1)
}

// SetRunning updates the running state gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Store(1)
	} else {
		m.running.Store(0)
	}
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Int64{
		&m.starts, &m.stops, &m.configReloads, &m.configErrors,
		&m.updates, &m.updateErrors, &m.skippedTicks, &m.rebuilds,
		&m.refreshes, &m.surfaceErrors, &m.errorsTotal, &m.eventsEmitted,
		&m.updateLatencyNs, &m.updateLatencyCount, &m.renderLatencyNs, &m.renderLatencyCount,
	} {
		c.Store(0)
	}
	m.running.Store(0)
	m.activePanels.Store(0)
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
