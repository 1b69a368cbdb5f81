// Package telemetry sets up OpenTelemetry tracing and metrics for the
// pipeline and records chunk and attempt metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "chunkflow"

// Config selects the exporter. Exporter is stdout or none.
type Config struct {
	Enabled  bool
	Exporter string
	Version  string
	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
}

// Provider gives access to the configured tracer and meter.
type Provider interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	// Shutdown flushes and stops the exporters.
	Shutdown(ctx context.Context) error
}

type implProvider struct {
	tracer         trace.Tracer
	meter          metric.Meter
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// New creates a Provider. A disabled config yields no-op instruments.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if !cfg.Enabled {
		return NewNop(), nil
	}

	w := cfg.Writer
	switch cfg.Exporter {
	case "stdout":
		if w == nil {
			w = os.Stdout
		}
	case "none", "":
		w = io.Discard
	default:
		return nil, fmt.Errorf("unknown telemetry exporter: %q", cfg.Exporter)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spanExporter),
	)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("create metrics exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)

	return &implProvider{
		tracer:         tp.Tracer(ServiceName),
		meter:          mp.Meter(ServiceName),
		tracerProvider: tp,
		meterProvider:  mp,
	}, nil
}

// NewNop returns a Provider whose instruments discard everything.
func NewNop() Provider {
	return &implProvider{
		tracer: tracenoop.NewTracerProvider().Tracer(ServiceName),
		meter:  noop.NewMeterProvider().Meter(ServiceName),
	}
}

func (p *implProvider) Tracer() trace.Tracer {
	return p.tracer
}

func (p *implProvider) Meter() metric.Meter {
	return p.meter
}

func (p *implProvider) Shutdown(ctx context.Context) error {
	var errs []error

	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
