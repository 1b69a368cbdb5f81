package telemetry

import (
	"context"

	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder turns orchestrator attempts and scheduler events into metrics.
// It implements retry.Hook and scheduler.Observer.
type Recorder struct {
	attempts        metric.Int64Counter
	attemptErrors   metric.Int64Counter
	attemptDuration metric.Float64Histogram
	backoff         metric.Float64Histogram
	chunks          metric.Int64Counter
}

// NewRecorder registers the pipeline instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	attempts, err := meter.Int64Counter(
		"chunkflow.attempts",
		metric.WithDescription("Transformation attempts per backend"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	attemptErrors, err := meter.Int64Counter(
		"chunkflow.attempt.errors",
		metric.WithDescription("Failed transformation attempts by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	attemptDuration, err := meter.Float64Histogram(
		"chunkflow.attempt.duration_ms",
		metric.WithDescription("Transformation call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	backoff, err := meter.Float64Histogram(
		"chunkflow.backoff_ms",
		metric.WithDescription("Delay scheduled before a retry in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	chunks, err := meter.Int64Counter(
		"chunkflow.chunks",
		metric.WithDescription("Resolved chunks by outcome"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		attempts:        attempts,
		attemptErrors:   attemptErrors,
		attemptDuration: attemptDuration,
		backoff:         backoff,
		chunks:          chunks,
	}, nil
}

func (r *Recorder) OnAttempt(ctx context.Context, a retry.Attempt) {
	backend := attribute.String("backend", a.Backend)

	r.attempts.Add(ctx, 1, metric.WithAttributes(backend))
	r.attemptDuration.Record(ctx, float64(a.Duration.Milliseconds()), metric.WithAttributes(backend))

	if a.Err != nil {
		r.attemptErrors.Add(ctx, 1, metric.WithAttributes(backend, attribute.String("kind", a.Kind.String())))
	}
	if a.Delay > 0 {
		r.backoff.Record(ctx, float64(a.Delay.Milliseconds()), metric.WithAttributes(backend))
	}
}

func (r *Recorder) OnChunkResolved(ctx context.Context, ev scheduler.Event) {
	outcome := "success"
	if !ev.Success {
		outcome = "failure"
	}
	r.chunks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("backend", ev.BackendUsed),
	))
}
