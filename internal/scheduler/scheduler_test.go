package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/content"
	"github.com/opd-ai/go-limebar/internal/panel"
	"github.com/opd-ai/go-limebar/internal/provider"
)

type recorder struct {
	mu       sync.Mutex
	started  map[string]int
	stopped  map[string]int
	skipped  int
	finished int
	errs     int
}

func newRecorder() *recorder {
	return &recorder{started: map[string]int{}, stopped: map[string]int{}}
}

func (r *recorder) PanelStarted(name string) { r.mu.Lock(); r.started[name]++; r.mu.Unlock() }
func (r *recorder) PanelStopped(name string) { r.mu.Lock(); r.stopped[name]++; r.mu.Unlock() }
func (r *recorder) UpdateSkipped(string)     { r.mu.Lock(); r.skipped++; r.mu.Unlock() }
func (r *recorder) UpdateFinished(_ string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
	if err != nil {
		r.errs++
	}
}

func buildPanel(t *testing.T, name string, interval int, p provider.Provider) *panel.Panel {
	t.Helper()
	cfg := config.DefaultConfig()
	rec := config.DefaultPanelConfig()
	rec.PanelType = "command"
	rec.Name = name
	rec.Command = "stub"
	rec.UpdateFrequency = interval
	cfg.Panels = []config.PanelConfig{rec}

	reg := panel.NewRegistry()
	reg.Register(panel.VariantCommand, func(config.PanelConfig) (provider.Provider, error) {
		return p, nil
	})
	set, warnings := panel.Build(&cfg, reg)
	require.Empty(t, warnings)
	require.Equal(t, 1, set.Len())
	return set.Panels()[0]
}

func receive(t *testing.T, s *Scheduler) Result {
	t.Helper()
	select {
	case r := <-s.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
		return Result{}
	}
}

func TestStartClockHasTextImmediately(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	cfg := config.DefaultConfig()
	rec := config.DefaultPanelConfig()
	rec.PanelType = "clock"
	rec.Name = "clock"
	rec.UpdateFrequency = 1
	cfg.Panels = []config.PanelConfig{rec}
	set, _ := panel.Build(&cfg, nil)
	p := set.Panels()[0]

	s.Start(p)

	require.NotEmpty(t, p.Display(), "clock text should be present as soon as Start returns")
	require.False(t, p.Busy())
	require.False(t, p.LastUpdate().IsZero())
	require.Equal(t, 1, s.Active())
}

func TestDispatchedUpdateIsApplied(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	p := buildPanel(t, "cmd", 0, provider.Func(func(context.Context, string, string) (string, error) {
		return "first\nsecond\n", nil
	}))
	s.Start(p)
	require.True(t, p.Busy(), "non-inline provider should be dispatched")

	r := receive(t, s)
	require.True(t, s.Apply(r))
	require.Equal(t, "first", p.Display())
	require.Equal(t, "second\n\n", p.Tooltip())
	require.False(t, p.Busy())
}

func TestLayoutTemplateApplied(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	cfg := config.DefaultConfig()
	rec := config.DefaultPanelConfig()
	rec.PanelType = "command"
	rec.Name = "load"
	rec.Command = "stub"
	rec.LayoutString = "load: {content}"
	cfg.Panels = []config.PanelConfig{rec}
	reg := panel.NewRegistry()
	reg.Register(panel.VariantCommand, func(config.PanelConfig) (provider.Provider, error) {
		return provider.Func(func(context.Context, string, string) (string, error) { return "0.42", nil }), nil
	})
	set, _ := panel.Build(&cfg, reg)
	p := set.Panels()[0]

	s.Start(p)
	require.True(t, s.Apply(receive(t, s)))
	require.Equal(t, "load: 0.42", p.Display())
}

func TestAtMostOneUpdateInFlight(t *testing.T) {
	obs := newRecorder()
	s := New(context.Background(), Options{Observer: obs})
	defer s.Close()

	release := make(chan struct{})
	var inFlight, maxInFlight, calls int32
	p := buildPanel(t, "slow", 1, provider.Func(func(context.Context, string, string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		atomic.AddInt32(&calls, 1)
		<-release
		return "done", nil
	}))

	s.Start(p)
	require.True(t, p.Busy())

	tick := Tick{Name: "slow", Entry: 1}
	for i := 0; i < 5; i++ {
		require.False(t, s.HandleTick(tick), "tick while busy must be skipped")
	}
	require.Equal(t, 5, obs.skipped)

	close(release)
	require.True(t, s.Apply(receive(t, s)))
	require.False(t, p.Busy())

	require.True(t, s.HandleTick(tick), "tick after completion should dispatch")
	require.True(t, s.Apply(receive(t, s)))

	require.EqualValues(t, 1, atomic.LoadInt32(&maxInFlight))
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestStaleResultDiscardedAfterStop(t *testing.T) {
	obs := newRecorder()
	s := New(context.Background(), Options{Observer: obs})
	defer s.Close()

	release := make(chan struct{})
	p := buildPanel(t, "slow", 0, provider.Func(func(context.Context, string, string) (string, error) {
		<-release
		return "late", nil
	}))

	s.Start(p)
	require.True(t, s.Stop("slow"))
	require.False(t, s.Stop("slow"), "second stop is a no-op")
	require.Equal(t, 1, obs.stopped["slow"])

	close(release)
	r := receive(t, s)
	require.False(t, s.Apply(r), "result for a stopped panel must be discarded")
	require.NotEqual(t, "late", p.Display())
}

func TestStaleResultDiscardedAfterRestart(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	release := make(chan struct{})
	var calls int32
	p := buildPanel(t, "p", 0, provider.Func(func(context.Context, string, string) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			return "old", nil
		}
		return "new", nil
	}))

	s.Start(p)
	s.Stop("p")
	s.Start(p)

	fresh := receive(t, s)
	require.True(t, s.Apply(fresh))
	require.Equal(t, "new", p.Display())

	close(release)
	stale := receive(t, s)
	require.False(t, s.Apply(stale))
	require.Equal(t, "new", p.Display())
}

func TestStaleTickIgnored(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	p := buildPanel(t, "p", 0, provider.Func(func(context.Context, string, string) (string, error) {
		return "x", nil
	}))
	s.Start(p)
	require.True(t, s.Apply(receive(t, s)))

	require.False(t, s.HandleTick(Tick{Name: "p", Entry: 99}))
	require.False(t, s.HandleTick(Tick{Name: "unknown", Entry: 1}))
}

func TestProviderErrorRenderedAndRetried(t *testing.T) {
	obs := newRecorder()
	s := New(context.Background(), Options{Observer: obs})
	defer s.Close()

	cmd := &provider.Command{}
	p := buildPanel(t, "broken", 1, provider.Func(func(ctx context.Context, _ string, options string) (string, error) {
		return cmd.Produce(ctx, "nonexistent-binary-for-limebar-tests", options)
	}))

	s.Start(p)
	r := receive(t, s)
	require.Error(t, r.Err)
	require.True(t, s.Apply(r))
	require.True(t, strings.HasPrefix(p.Display(), content.DiagnosticPrefix), "display = %q", p.Display())
	require.Equal(t, 1, s.Active(), "a failing panel keeps its schedule")

	require.True(t, s.HandleTick(Tick{Name: "broken", Entry: 1}))
	r = receive(t, s)
	require.True(t, s.Apply(r))
	require.True(t, strings.HasPrefix(p.Display(), content.DiagnosticPrefix))
	require.Equal(t, 2, obs.errs)
}

func TestErrorUsesLayoutTemplate(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	cfg := config.DefaultConfig()
	rec := config.DefaultPanelConfig()
	rec.PanelType = "command"
	rec.Name = "e"
	rec.Command = "stub"
	rec.LayoutString = "[{content}]"
	cfg.Panels = []config.PanelConfig{rec}
	reg := panel.NewRegistry()
	reg.Register(panel.VariantCommand, func(config.PanelConfig) (provider.Provider, error) {
		return provider.Func(func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}), nil
	})
	set, _ := panel.Build(&cfg, reg)
	p := set.Panels()[0]

	s.Start(p)
	require.True(t, s.Apply(receive(t, s)))
	require.Equal(t, "["+content.DiagnosticPrefix+"boom]", p.Display())
}

func TestProviderPanicIsContained(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	p := buildPanel(t, "panicky", 0, provider.Func(func(context.Context, string, string) (string, error) {
		panic("kaboom")
	}))

	s.Start(p)
	r := receive(t, s)
	var perr *provider.Error
	require.ErrorAs(t, r.Err, &perr)
	require.True(t, s.Apply(r))
	require.Contains(t, p.Display(), "kaboom")
	require.False(t, p.Busy())
}

func TestTimeoutCancelsProvider(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	cfg := config.DefaultConfig()
	rec := config.DefaultPanelConfig()
	rec.PanelType = "command"
	rec.Name = "hang"
	rec.Command = "stub"
	rec.Timeout = 1
	cfg.Panels = []config.PanelConfig{rec}
	reg := panel.NewRegistry()
	reg.Register(panel.VariantCommand, func(config.PanelConfig) (provider.Provider, error) {
		return provider.Func(func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}), nil
	})
	set, _ := panel.Build(&cfg, reg)

	s.Start(set.Panels()[0])
	r := receive(t, s)
	require.ErrorIs(t, r.Err, context.DeadlineExceeded)
}

func TestIntervalTicks(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	p := buildPanel(t, "ticker", 1, provider.Func(func(context.Context, string, string) (string, error) {
		return "ok", nil
	}))
	s.Start(p)
	require.True(t, s.Apply(receive(t, s)))

	select {
	case tick := <-s.Ticks():
		require.Equal(t, "ticker", tick.Name)
		require.True(t, s.HandleTick(tick))
		require.True(t, s.Apply(receive(t, s)))
	case <-time.After(3 * time.Second):
		t.Fatal("no tick within 3s for a 1s interval")
	}
}

func TestZeroIntervalRunsOnce(t *testing.T) {
	s := New(context.Background(), Options{})
	defer s.Close()

	var calls int32
	p := buildPanel(t, "once", 0, provider.Func(func(context.Context, string, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	}))
	s.Start(p)
	require.True(t, s.Apply(receive(t, s)))

	select {
	case tick := <-s.Ticks():
		t.Fatalf("unexpected tick %+v", tick)
	case <-time.After(1500 * time.Millisecond):
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestStopAllAndSynthetic(t *testing.T) {
	obs := newRecorder()
	s := New(context.Background(), Options{Observer: obs})
	defer s.Close()

	errSet := panel.ErrorSet(errors.New("missing"))
	s.Start(errSet.Panels()[0])
	require.Equal(t, 0, s.Active(), "synthetic panels are never scheduled")

	cfg := config.DefaultConfig()
	for _, name := range []string{"a", "b", "c"} {
		rec := config.DefaultPanelConfig()
		rec.PanelType = "clock"
		rec.Name = name
		rec.UpdateFrequency = 1
		cfg.Panels = append(cfg.Panels, rec)
	}
	set, _ := panel.Build(&cfg, nil)
	for _, p := range set.Panels() {
		s.Start(p)
	}
	require.Equal(t, 3, s.Active())

	require.Equal(t, 3, s.StopAll())
	require.Equal(t, 0, s.Active())
	for _, name := range []string{"a", "b", "c"} {
		require.Equal(t, 1, obs.stopped[name], "panel %s stopped once", name)
	}
}

func TestStalled(t *testing.T) {
	now := time.Now()
	s := New(context.Background(), Options{Now: func() time.Time { return now }})
	defer s.Close()

	release := make(chan struct{})
	defer close(release)
	p := buildPanel(t, "stuck", 20, provider.Func(func(context.Context, string, string) (string, error) {
		<-release
		return "", nil
	}))
	s.Start(p)

	require.Empty(t, s.Stalled(now.Add(59*time.Second)))
	stalls := s.Stalled(now.Add(61 * time.Second))
	require.Len(t, stalls, 1)
	require.Equal(t, "stuck", stalls[0].Name)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(context.Background(), Options{})
	p := buildPanel(t, "p", 1, provider.Func(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))
	s.Start(p)

	s.Close()
	s.Close()
	require.Equal(t, 0, s.Active())

	s.Start(p)
	require.Equal(t, 0, s.Active(), "Start after Close is ignored")
}
