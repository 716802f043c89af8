package limebar

import (
	"errors"
	"expvar"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	snap := NewMetrics().Snapshot()
	if snap.Starts != 0 || snap.Updates != 0 || snap.ErrorsTotal != 0 || snap.ActivePanels != 0 {
		t.Errorf("new metrics should be zero: %+v", snap)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementStarts()
	m.IncrementStarts()
	m.IncrementStops()
	m.IncrementConfigReloads()
	m.IncrementConfigReloads()
	m.IncrementConfigErrors()
	m.IncrementErrors()
	m.IncrementEventsEmitted()

	snap := m.Snapshot()
	tests := []struct {
		name     string
		got      int64
		expected int64
	}{
		{"Starts", snap.Starts, 2},
		{"Stops", snap.Stops, 1},
		{"ConfigReloads", snap.ConfigReloads, 2},
		{"ConfigErrors", snap.ConfigErrors, 1},
		{"ErrorsTotal", snap.ErrorsTotal, 1},
		{"EventsEmitted", snap.EventsEmitted, 1},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %d, expected %d", tt.name, tt.got, tt.expected)
		}
	}
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetrics()

	m.PanelStarted("a")
	m.PanelStarted("b")
	m.PanelStopped("a")
	m.UpdateSkipped("b")
	m.UpdateFinished("b", 10*time.Millisecond, nil)
	m.UpdateFinished("b", 30*time.Millisecond, errors.New("exit status 1"))

	snap := m.Snapshot()
	if snap.ActivePanels != 1 {
		t.Errorf("ActivePanels = %d, want 1", snap.ActivePanels)
	}
	if snap.SkippedTicks != 1 {
		t.Errorf("SkippedTicks = %d, want 1", snap.SkippedTicks)
	}
	if snap.Updates != 2 || snap.UpdateErrors != 1 {
		t.Errorf("Updates = %d, UpdateErrors = %d", snap.Updates, snap.UpdateErrors)
	}
	if snap.UpdateLatencyAvg != 20*time.Millisecond {
		t.Errorf("UpdateLatencyAvg = %v, want 20ms", snap.UpdateLatencyAvg)
	}
}

func TestMetricsRecordRender(t *testing.T) {
	m := NewMetrics()

	m.RecordRender(true, 4*time.Millisecond, nil)
	m.RecordRender(false, 2*time.Millisecond, nil)
	m.RecordRender(false, 0, errors.New("panel not in view"))

	snap := m.Snapshot()
	if snap.Rebuilds != 1 || snap.Refreshes != 2 || snap.SurfaceErrors != 1 {
		t.Errorf("unexpected render counters: %+v", snap)
	}
	if snap.RenderLatencyAvg != 2*time.Millisecond {
		t.Errorf("RenderLatencyAvg = %v, want 2ms", snap.RenderLatencyAvg)
	}
}

func TestMetricsGaugesAndReset(t *testing.T) {
	m := NewMetrics()
	m.SetRunning(true)
	m.PanelStarted("a")
	m.IncrementStarts()

	if !m.Snapshot().Running {
		t.Error("Running should be true after SetRunning(true)")
	}

	m.Reset()
	snap := m.Snapshot()
	if snap.Running || snap.Starts != 0 || snap.ActivePanels != 0 {
		t.Errorf("Reset left values behind: %+v", snap)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := safeDivide(100, 0); got != 0 {
		t.Errorf("safeDivide(100, 0) = %v, want 0", got)
	}
	if got := safeDivide(100, 4); got != 25 {
		t.Errorf("safeDivide(100, 4) = %v, want 25", got)
	}
}

func TestMetricsRegisterExpvar(t *testing.T) {
	m := DefaultMetrics()
	m.RegisterExpvar()
	m.RegisterExpvar()

	for _, name := range []string{"limebar_starts_total", "limebar_running", "limebar_active_panels"} {
		if expvar.Get(name) == nil {
			t.Errorf("expvar %s not published", name)
		}
	}
}
