package limebar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/lua"
	"github.com/opd-ai/go-limebar/internal/panel"
	"github.com/opd-ai/go-limebar/internal/reconcile"
	"github.com/opd-ai/go-limebar/internal/render"
	"github.com/opd-ai/go-limebar/internal/scheduler"
)

var (
	// ErrAlreadyRunning is returned by Start on a running bar.
	ErrAlreadyRunning = errors.New("bar is already running")
	// ErrNotRunning is returned by Reload on a stopped bar.
	ErrNotRunning = errors.New("bar is not running")
)

// barImpl implements Bar. Fields below the coordinator marker belong to the
// goroutine running loop (or to Start before that goroutine exists).
type barImpl struct {
	path     string
	source   string
	surface  Surface
	opts     Options
	metrics  *Metrics
	logger   Logger
	registry *panel.Registry
	now      func() time.Time

	// observers receive scheduling events after metrics.
	observers []scheduler.Observer

	running     atomic.Bool
	updateCount atomic.Uint64
	reloadCount atomic.Uint64
	lastError   atomic.Value

	mu           sync.RWMutex
	startTime    time.Time
	cancel       context.CancelFunc
	done         chan struct{}
	reloadReq    chan chan error
	nudge        chan struct{}
	watcher      *configWatcher
	errorHandler ErrorHandler
	eventHandler EventHandler
	snapshot     []PanelSnapshot
	generation   string
	configErr    error

	// coordinator
	sched      *scheduler.Scheduler
	set        *panel.Set
	reconciler *reconcile.Reconciler
	lastMod    time.Time
	warned     map[string]bool
}

// errorValue wraps errors so atomic.Value always stores one concrete type.
type errorValue struct{ err error }

func (b *barImpl) init() {
	if b.surface == nil {
		b.surface = render.NewHeadless()
	}
	b.metrics = b.opts.Metrics
	if b.metrics == nil {
		b.metrics = DefaultMetrics()
	}
	b.logger = b.opts.Logger
	if b.logger == nil {
		b.logger = NopLogger()
	}
	b.now = b.opts.Now
	if b.now == nil {
		b.now = time.Now
	}

	b.registry = b.opts.Registry
	if b.registry == nil {
		b.registry = panel.NewRegistry()
	}
	if b.opts.ScriptCPULimit > 0 || b.opts.ScriptMemoryLimit > 0 {
		limits := lua.DefaultLimits()
		if b.opts.ScriptCPULimit > 0 {
			limits.CPU = b.opts.ScriptCPULimit
		}
		if b.opts.ScriptMemoryLimit > 0 {
			limits.Memory = b.opts.ScriptMemoryLimit
		}
		b.registry.ScriptLimits = limits
	}
}

// Start implements Bar.
func (b *barImpl) Start() error {
	b.mu.Lock()
	if b.running.Load() {
		b.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	b.reloadReq = make(chan chan error)
	b.nudge = make(chan struct{}, 1)
	b.startTime = b.now()
	b.updateCount.Store(0)
	b.reloadCount.Store(0)
	b.lastError.Store(errorValue{})

	b.sched = scheduler.New(ctx, scheduler.Options{
		Tracer:   b.opts.Tracer,
		Observer: b.observer(),
		Now:      b.now,
	})
	b.reconciler = reconcile.New()
	b.set = nil
	b.lastMod = time.Time{}

	if b.opts.WatchConfig {
		nudge := b.nudge
		w, err := newConfigWatcher(b.path, b.opts.WatchDebounce, func() {
			select {
			case nudge <- struct{}{}:
			default:
			}
		}, func(err error) {
			b.logger.Warn("config watch error", "path", b.source, "error", err)
		})
		if err != nil {
			b.logger.Warn("config watch disabled", "path", b.source, "error", err)
		} else {
			b.watcher = w
			w.Start()
		}
	}

	b.running.Store(true)
	done, reloadReq, nudge := b.done, b.reloadReq, b.nudge
	b.mu.Unlock()

	b.metrics.IncrementStarts()
	b.metrics.SetRunning(true)
	b.logger.Info("bar starting", "config", b.source)

	b.reload()
	go b.loop(ctx, done, reloadReq, nudge)

	b.emitEvent(EventStarted, "Bar started successfully")
	return nil
}

// loop is the coordinating goroutine. It alone touches panels, the
// scheduler and the surface.
func (b *barImpl) loop(ctx context.Context, done chan struct{}, reloadReq chan chan error, nudge chan struct{}) {
	poll := time.NewTicker(b.pollInterval())
	defer func() {
		poll.Stop()
		b.sched.Close()
		b.running.Store(false)
		b.metrics.SetRunning(false)
		b.metrics.IncrementStops()
		b.logger.Info("bar stopped", "config", b.source)
		b.emitEvent(EventStopped, "Bar stopped")
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-b.sched.Ticks():
			b.sched.HandleTick(t)
		case r := <-b.sched.Results():
			if b.sched.Apply(r) {
				b.updateCount.Add(1)
				b.render()
			}
		case <-poll.C:
			b.poll()
		case <-nudge:
			b.poll()
		case reply := <-reloadReq:
			reply <- b.reload()
		}
		b.publish()
	}
}

func (b *barImpl) pollInterval() time.Duration {
	if b.opts.PollInterval > 0 {
		return b.opts.PollInterval
	}
	return DefaultPollInterval
}

// poll reloads when the file's modification time moved and warns once per
// panel about updates that have stopped coming back.
func (b *barImpl) poll() {
	if config.HasChanged(b.path, b.lastMod) {
		b.logger.Debug("config changed", "path", b.source)
		b.reload()
	}

	for _, s := range b.sched.Stalled(b.now()) {
		if b.warned[s.Name] {
			continue
		}
		b.warned[s.Name] = true
		b.logger.Warn("panel stalled", "panel", s.Name, "since", s.Since)
	}
}

// reload replaces the running panel set with one built from the file. A
// file that cannot be loaded is replaced by the error panel; the error is
// returned for callers of Reload but never stops the bar.
func (b *barImpl) reload() error {
	stopped := b.sched.StopAll()
	b.reloadCount.Add(1)
	b.metrics.IncrementConfigReloads()
	b.warned = make(map[string]bool)

	cfg, err := config.Load(b.path)
	if err != nil {
		b.lastMod = time.Time{}
		var le *config.LoadError
		if errors.As(err, &le) {
			b.lastMod = le.ModTime
		}
		b.set = panel.ErrorSet(err)
		b.metrics.IncrementConfigErrors()
		b.logger.Error("config load failed", "path", b.source, "error", err)
	} else {
		b.lastMod = cfg.ModTime
		for _, w := range cfg.Warnings {
			b.logger.Warn("config warning", "path", b.source, "field", w.Field, "message", w.Message)
		}
		var warnings []panel.Warning
		b.set, warnings = panel.Build(cfg, b.registry)
		for _, w := range warnings {
			b.logger.Warn("panel dropped", "index", w.Index, "name", w.Name, "error", w.Err)
		}
	}

	if sa, ok := b.surface.(SettingsApplier); ok {
		sa.ApplySettings(b.set.Settings)
	}
	for _, p := range b.set.Panels() {
		b.sched.Start(p)
	}
	// Every reload recreates the view, even when the layout is unchanged.
	b.reconciler.Reset()
	b.render()
	b.publish()

	if err != nil {
		b.notifyError(err)
		b.emitEvent(EventConfigError, err.Error())
		return err
	}
	b.logger.Info("config loaded",
		"path", b.source,
		"generation", b.set.Generation,
		"panels", b.set.Len(),
		"replaced", stopped,
	)
	b.emitEvent(EventConfigReloaded, fmt.Sprintf("%d panels loaded", b.set.Len()))
	return nil
}

// render pushes the current panel texts to the surface.
func (b *barImpl) render() {
	if b.set == nil {
		return
	}
	start := time.Now()
	rebuilt, err := b.reconciler.Render(b.surface, b.set.Panels())
	b.metrics.RecordRender(rebuilt, time.Since(start), err)
	if err != nil {
		b.logger.Warn("surface error", "rebuild", rebuilt, "error", err)
	}
}

// publish copies the coordinator's view for the accessor methods.
func (b *barImpl) publish() {
	if b.set == nil {
		return
	}
	panels := b.set.Panels()
	snap := make([]PanelSnapshot, len(panels))
	for i, p := range panels {
		snap[i] = PanelSnapshot{
			Name:       p.Name(),
			Type:       p.Variant().String(),
			Display:    p.Display(),
			Tooltip:    p.Tooltip(),
			Interval:   p.Interval(),
			LastUpdate: p.LastUpdate(),
			Busy:       p.Busy(),
			BusySince:  p.BusySince(),
			Synthetic:  p.Synthetic(),
		}
	}

	b.mu.Lock()
	b.snapshot = snap
	b.generation = b.set.Generation
	b.configErr = b.set.Err()
	b.mu.Unlock()
}

// observer fans scheduling events out to metrics and any test observers.
func (b *barImpl) observer() scheduler.Observer {
	if len(b.observers) == 0 {
		return b.metrics
	}
	return multiObserver(append([]scheduler.Observer{b.metrics}, b.observers...))
}

type multiObserver []scheduler.Observer

func (m multiObserver) PanelStarted(name string) {
	for _, o := range m {
		o.PanelStarted(name)
	}
}

func (m multiObserver) PanelStopped(name string) {
	for _, o := range m {
		o.PanelStopped(name)
	}
}

func (m multiObserver) UpdateSkipped(name string) {
	for _, o := range m {
		o.UpdateSkipped(name)
	}
}

func (m multiObserver) UpdateFinished(name string, elapsed time.Duration, err error) {
	for _, o := range m {
		o.UpdateFinished(name, elapsed, err)
	}
}

// Stop implements Bar.
func (b *barImpl) Stop() error {
	if !b.running.Load() {
		return nil
	}

	b.mu.Lock()
	cancel, done, watcher := b.cancel, b.done, b.watcher
	b.watcher = nil
	b.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	if cancel != nil {
		cancel()
	}

	timeout := b.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		err := fmt.Errorf("shutdown timeout after %v: panel updates did not finish", timeout)
		b.notifyError(err)
		return err
	}
}

// Reload implements Bar.
func (b *barImpl) Reload() error {
	if !b.running.Load() {
		return ErrNotRunning
	}
	b.mu.RLock()
	req, done := b.reloadReq, b.done
	b.mu.RUnlock()

	reply := make(chan error, 1)
	select {
	case req <- reply:
	case <-done:
		return ErrNotRunning
	}
	select {
	case err := <-reply:
		return err
	case <-done:
		return ErrNotRunning
	}
}

// IsRunning implements Bar.
func (b *barImpl) IsRunning() bool {
	return b.running.Load()
}

// Status implements Bar.
func (b *barImpl) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Status{
		Running:      b.running.Load(),
		StartTime:    b.startTime,
		UpdateCount:  b.updateCount.Load(),
		ReloadCount:  b.reloadCount.Load(),
		LastError:    b.getError(),
		ConfigSource: b.source,
		Generation:   b.generation,
		Panels:       len(b.snapshot),
		ConfigError:  b.configErr,
	}
}

// Panels implements Bar.
func (b *barImpl) Panels() []PanelSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]PanelSnapshot(nil), b.snapshot...)
}

// SetErrorHandler implements Bar.
func (b *barImpl) SetErrorHandler(handler ErrorHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorHandler = handler
}

// SetEventHandler implements Bar.
func (b *barImpl) SetEventHandler(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventHandler = handler
}

// Health implements Bar.
func (b *barImpl) Health() HealthCheck {
	now := b.now()
	b.mu.RLock()
	in := healthInput{
		running:   b.running.Load(),
		startTime: b.startTime,
		updates:   b.updateCount.Load(),
		configErr: b.configErr,
		lastErr:   b.getError(),
		panels:    append([]PanelSnapshot(nil), b.snapshot...),
	}
	b.mu.RUnlock()
	return buildHealth(in, now)
}

// Metrics implements Bar.
func (b *barImpl) Metrics() *Metrics {
	return b.metrics
}

func (b *barImpl) getError() error {
	if v, ok := b.lastError.Load().(errorValue); ok {
		return v.err
	}
	return nil
}

// notifyError records err and hands it to the error handler.
func (b *barImpl) notifyError(err error) {
	b.lastError.Store(errorValue{err})
	b.metrics.IncrementErrors()

	b.mu.RLock()
	handler := b.errorHandler
	b.mu.RUnlock()

	if handler != nil {
		logger := b.logger
		go func() {
			var pc panics.Catcher
			pc.Try(func() { handler(err) })
			if r := pc.Recovered(); r != nil {
				logger.Error("error handler panicked", "panic", r.Value, "original_error", err)
			}
		}()
	}

	b.emitEvent(EventError, err.Error())
}

// emitEvent delivers an event to the event handler without blocking.
func (b *barImpl) emitEvent(eventType EventType, message string) {
	b.metrics.IncrementEventsEmitted()

	b.mu.RLock()
	handler := b.eventHandler
	b.mu.RUnlock()

	if handler == nil {
		return
	}
	event := Event{Type: eventType, Timestamp: b.now(), Message: message}
	go func() {
		var pc panics.Catcher
		pc.Try(func() { handler(event) })
		if r := pc.Recovered(); r != nil {
			b.mu.RLock()
			errHandler := b.errorHandler
			b.mu.RUnlock()
			if errHandler != nil {
				errHandler(fmt.Errorf("panic in event handler: %w", r.AsError()))
			}
		}
	}()
}

// stalledPanels lists snapshot panels whose update has outlived its stall
// threshold at now, sorted by name.
func stalledPanels(panels []PanelSnapshot, now time.Time) []string {
	var out []string
	for _, p := range panels {
		if !p.Busy || p.BusySince.IsZero() {
			continue
		}
		if now.Sub(p.BusySince) > scheduler.StallThreshold(p.Interval) {
			out = append(out, p.Name)
		}
	}
	sort.Strings(out)
	return out
}
