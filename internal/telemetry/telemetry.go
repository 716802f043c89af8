// Package telemetry installs the OpenTelemetry tracer provider used for
// panel update spans.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// EndpointEnv names the variable that enables OTLP export.
const EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// ServiceNameEnv overrides the reported service name.
const ServiceNameEnv = "OTEL_SERVICE_NAME"

// DefaultServiceName is reported when ServiceNameEnv is unset.
const DefaultServiceName = "limebar"

// Exporter owns the SDK tracer provider. A nil *Exporter is valid and
// does nothing.
type Exporter struct {
	provider *sdktrace.TracerProvider
}

// Setup installs a batching OTLP/HTTP tracer provider as the global
// provider when EndpointEnv is set. It returns nil, nil when export is
// disabled, leaving the global no-op provider in place.
func Setup(ctx context.Context) (*Exporter, error) {
	endpoint := os.Getenv(EndpointEnv)
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	serviceName := os.Getenv(ServiceNameEnv)
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return &Exporter{provider: provider}, nil
}

// Tracer returns a tracer from the exporter's provider, or from the global
// provider when e is nil.
func (e *Exporter) Tracer(name string) trace.Tracer {
	if e == nil {
		return otel.Tracer(name)
	}
	return e.provider.Tracer(name)
}

// Shutdown flushes pending spans and stops the exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}
