package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TraceConfig configures the tracer provider installed at process startup.
// Sapiens does not ship an OTLP exporter; spans are recorded by the SDK's
// TracerProvider so sampling and parent/child relationships work exactly
// as they would against a wired collector, and a SpanProcessor can be
// attached to the returned provider for local inspection or export.
type TraceConfig struct {
	ServiceName    string
	ServiceVersion string
	// SamplingRate is the fraction of traces recorded, 0.0 to 1.0.
	// Defaults to 1.0 when zero.
	SamplingRate float64
}

// NewTracerProvider builds an SDK TracerProvider, installs it as the
// global provider, and returns a shutdown function the caller must invoke
// on exit.
func NewTracerProvider(cfg TraceConfig) (*sdktrace.TracerProvider, func(context.Context) error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "sapiens"
	}
	if cfg.SamplingRate <= 0 {
		cfg.SamplingRate = 1.0
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		res = resource.Default()
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SamplingRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)

	return provider, provider.Shutdown
}

// RecordSpanError records err on span and marks the span failed. A nil err
// is a no-op, so callers can defer this unconditionally.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
