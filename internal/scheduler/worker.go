package scheduler

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/opd-ai/go-limebar/internal/config"
	"github.com/opd-ai/go-limebar/internal/content"
	"github.com/opd-ai/go-limebar/internal/provider"
)

// job is the immutable snapshot a worker needs; it never refers back to
// the panel.
type job struct {
	entry      uint64
	generation string
	config     config.PanelConfig
	provider   provider.Provider
}

func newJob(e *entry) job {
	return job{
		entry:      e.id,
		generation: e.panel.Generation(),
		config:     e.panel.Config(),
		provider:   e.panel.Provider(),
	}
}

// execute runs the provider and the content pipeline. Provider errors and
// panics become diagnostic display text.
func (s *Scheduler) execute(j job) Result {
	cfg := j.config
	r := Result{
		Generation: j.generation,
		Name:       cfg.Name,
		Entry:      j.entry,
		Started:    s.now(),
	}

	ctx, span := s.tracer.Start(s.ctx, "panel.update", trace.WithAttributes(
		attribute.String("panel.name", cfg.Name),
		attribute.String("panel.type", cfg.PanelType),
		attribute.String("panel.command", cfg.Command),
	))
	defer span.End()

	if timeout := cfg.UpdateTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		raw     string
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		raw, err = j.provider.Produce(ctx, cfg.Command, cfg.Options)
	})
	if rec := catcher.Recovered(); rec != nil {
		err = &provider.Error{
			Provider: cfg.PanelType,
			Command:  cfg.Command,
			Err:      fmt.Errorf("provider panicked: %v", rec.Value),
		}
	}

	r.Finished = s.now()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.Err = err
		r.Content = content.Failure(err, cfg.LayoutString)
		return r
	}

	r.Content = content.Process(raw, cfg.LayoutString)
	span.SetAttributes(attribute.Int("panel.output_bytes", len(raw)))
	return r
}
