// Package scheduler runs panel updates on their intervals.
//
// A Scheduler is driven by one coordinating goroutine: it calls Start, Stop,
// HandleTick and Apply, and drains Ticks and Results. Interval timers and
// provider work run on their own goroutines and only ever send messages on
// those two channels; they never touch a panel.
package scheduler

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/opd-ai/go-limebar/internal/content"
	"github.com/opd-ai/go-limebar/internal/panel"
	"github.com/opd-ai/go-limebar/internal/provider"
)

// MinStallThreshold is the shortest time an update may run before the
// panel is reported as stalled.
const MinStallThreshold = 30 * time.Second

// channelBuffer sizes the tick and result channels.
const channelBuffer = 64

// Tick asks the coordinator to refresh one panel.
type Tick struct {
	Name  string
	Entry uint64
}

// Result carries a finished update back to the coordinator.
type Result struct {
	Generation string
	Name       string
	Entry      uint64
	Content    content.Result
	// Err is the provider failure already rendered into Content, if any.
	Err      error
	Started  time.Time
	Finished time.Time
}

// Observer receives scheduling events. Implementations must be cheap; they
// are called on the coordinating goroutine.
type Observer interface {
	PanelStarted(name string)
	PanelStopped(name string)
	UpdateSkipped(name string)
	UpdateFinished(name string, elapsed time.Duration, err error)
}

// Options configures a Scheduler. The zero value is usable.
type Options struct {
	// Tracer creates a span for every provider run. Nil uses the global
	// OpenTelemetry tracer provider.
	Tracer trace.Tracer
	// Observer receives scheduling events. Nil disables them.
	Observer Observer
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

type entry struct {
	id    uint64
	panel *panel.Panel
	stop  chan struct{}
}

// Scheduler owns the interval timers and workers of the running panels.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	ticks   chan Tick
	results chan Result

	entries map[string]*entry
	nextID  uint64

	workers conc.WaitGroup
	timers  conc.WaitGroup

	tracer   trace.Tracer
	observer Observer
	now      func() time.Time
	closed   bool
}

// New creates a Scheduler. Provider runs inherit ctx; cancelling it (or
// calling Close) aborts work that honours cancellation.
func New(ctx context.Context, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)

	s := &Scheduler{
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		ticks:    make(chan Tick, channelBuffer),
		results:  make(chan Result, channelBuffer),
		entries:  make(map[string]*entry),
		tracer:   opts.Tracer,
		observer: opts.Observer,
		now:      opts.Now,
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/opd-ai/go-limebar/internal/scheduler")
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Ticks delivers interval ticks. Pass each one to HandleTick.
func (s *Scheduler) Ticks() <-chan Tick { return s.ticks }

// Results delivers finished updates. Pass each one to Apply.
func (s *Scheduler) Results() <-chan Result { return s.results }

// Start schedules p: one update runs immediately and further updates follow
// every p.Interval(). Cheap providers run their first update inline so the
// panel has text when Start returns. Synthetic panels are ignored.
// Starting a name that is already scheduled replaces the old entry.
func (s *Scheduler) Start(p *panel.Panel) {
	if s.closed || p.Synthetic() || p.Provider() == nil {
		return
	}
	if _, ok := s.entries[p.Name()]; ok {
		s.Stop(p.Name())
	}

	s.nextID++
	e := &entry{id: s.nextID, panel: p, stop: make(chan struct{})}
	s.entries[p.Name()] = e
	if s.observer != nil {
		s.observer.PanelStarted(p.Name())
	}

	if p.MarkBusy(s.now()) {
		if provider.IsInline(p.Provider()) {
			s.Apply(s.execute(newJob(e)))
		} else {
			s.dispatch(e)
		}
	}

	if interval := p.Interval(); interval > 0 {
		s.arm(e, interval)
	}
}

// Stop disarms the panel's timer. An update already in flight finishes but
// its result is discarded. It reports whether the panel was scheduled.
func (s *Scheduler) Stop(name string) bool {
	e, ok := s.entries[name]
	if !ok {
		return false
	}
	delete(s.entries, name)
	close(e.stop)
	e.panel.ClearBusy()
	if s.observer != nil {
		s.observer.PanelStopped(name)
	}
	return true
}

// StopAll stops every scheduled panel and returns how many were stopped.
func (s *Scheduler) StopAll() int {
	n := 0
	for name := range s.entries {
		if s.Stop(name) {
			n++
		}
	}
	return n
}

// Active returns the number of scheduled panels.
func (s *Scheduler) Active() int { return len(s.entries) }

// HandleTick starts an update for the ticked panel unless one is already in
// flight, in which case the tick is dropped. Ticks for panels that have
// since been stopped are ignored. It reports whether work was dispatched.
func (s *Scheduler) HandleTick(t Tick) bool {
	e, ok := s.entries[t.Name]
	if !ok || e.id != t.Entry {
		return false
	}
	if !e.panel.MarkBusy(s.now()) {
		if s.observer != nil {
			s.observer.UpdateSkipped(t.Name)
		}
		return false
	}
	s.dispatch(e)
	return true
}

// Apply stores a finished update on its panel. Results whose panel has been
// stopped or replaced are discarded; Apply reports whether r was used.
func (s *Scheduler) Apply(r Result) bool {
	e, ok := s.entries[r.Name]
	if !ok || e.id != r.Entry || e.panel.Generation() != r.Generation {
		return false
	}
	e.panel.Apply(r.Content, r.Finished)
	if s.observer != nil {
		s.observer.UpdateFinished(r.Name, r.Finished.Sub(r.Started), r.Err)
	}
	return true
}

// Stall describes a panel whose update has been running too long.
type Stall struct {
	Name  string
	Since time.Time
}

// StallThreshold is how long an update of a panel refreshed every interval
// may run before it counts as stalled: max(3 × interval, MinStallThreshold).
func StallThreshold(interval time.Duration) time.Duration {
	if t := 3 * interval; t > MinStallThreshold {
		return t
	}
	return MinStallThreshold
}

// Stalled lists panels whose in-flight update started more than
// StallThreshold before now.
func (s *Scheduler) Stalled(now time.Time) []Stall {
	var out []Stall
	for name, e := range s.entries {
		since := e.panel.BusySince()
		if since.IsZero() {
			continue
		}
		if now.Sub(since) > StallThreshold(e.panel.Interval()) {
			out = append(out, Stall{Name: name, Since: since})
		}
	}
	return out
}

// Close stops every panel, cancels in-flight work and waits for timers and
// workers to exit. Results still buffered are dropped.
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.StopAll()
	s.cancel()
	close(s.done)
	s.timers.Wait()
	s.workers.Wait()
}

func (s *Scheduler) arm(e *entry, interval time.Duration) {
	tick := Tick{Name: e.panel.Name(), Entry: e.id}
	stop := e.stop
	s.timers.Go(func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				select {
				case s.ticks <- tick:
				case <-stop:
					return
				case <-s.done:
					return
				}
			case <-stop:
				return
			case <-s.done:
				return
			}
		}
	})
}

func (s *Scheduler) dispatch(e *entry) {
	j := newJob(e)
	s.workers.Go(func() {
		r := s.execute(j)
		select {
		case s.results <- r:
		case <-s.done:
		}
	})
}
