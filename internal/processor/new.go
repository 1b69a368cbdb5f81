package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/config"
	"github.com/nguyentantai21042004/chunkflow/internal/extract"
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"github.com/nguyentantai21042004/chunkflow/internal/output"
	"github.com/nguyentantai21042004/chunkflow/internal/reconciler"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
	"github.com/nguyentantai21042004/chunkflow/internal/telemetry"
	"github.com/nguyentantai21042004/chunkflow/internal/transform"
	"github.com/nguyentantai21042004/chunkflow/pkg/executor"
	"go.opentelemetry.io/otel/trace"
)

type implProcessor struct {
	cfg        *config.Config
	extractor  extract.Extractor
	chunker    chunker.Chunker
	scheduler  scheduler.Scheduler
	transform  scheduler.TransformFunc
	reconciler reconciler.Reconciler
	writer     output.Writer
	tracer     trace.Tracer
	logger     logger.Logger
	observers  []scheduler.Observer
	now        func() time.Time
}

type settings struct {
	transform scheduler.TransformFunc
	observers []scheduler.Observer
	telemetry telemetry.Provider
	sleep     retry.SleepFunc
}

// Option customizes a Processor.
type Option func(*settings)

// WithTransform replaces the Gemini transformer.
func WithTransform(fn scheduler.TransformFunc) Option {
	return func(s *settings) { s.transform = fn }
}

// WithObserver receives stage progress events.
func WithObserver(o scheduler.Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithTelemetry records spans and metrics through p.
func WithTelemetry(p telemetry.Provider) Option {
	return func(s *settings) { s.telemetry = p }
}

// WithSleep replaces backoff and rate-limit sleeps, mainly for tests.
func WithSleep(fn retry.SleepFunc) Option {
	return func(s *settings) { s.sleep = fn }
}

// New wires the pipeline components from cfg.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, opts ...Option) (Processor, error) {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	if s.telemetry == nil {
		s.telemetry = telemetry.NewNop()
	}

	p := &implProcessor{
		cfg:       cfg,
		extractor: extract.New(exec, log),
		chunker: chunker.New(chunker.Options{
			BatchSize:   cfg.Chunking.BatchSizeTokens,
			OverlapSize: cfg.OverlapSize(),
		}),
		reconciler: reconciler.New(reconciler.Options{GapMarker: cfg.Output.GapMarker}),
		writer:     output.New(cfg.Paths.Output, cfg.Output.Formats, cfg.Output.Report, log),
		tracer:     s.telemetry.Tracer(),
		logger:     log,
		observers:  s.observers,
		now:        time.Now,
		transform:  s.transform,
	}

	if p.transform == nil {
		t := transform.New(transform.Options{
			APIKeys: cfg.Gemini.APIKeys,
			Params: transform.Params{
				Temperature:     cfg.Gemini.Temperature,
				TopP:            cfg.Gemini.TopP,
				TopK:            cfg.Gemini.TopK,
				MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
			},
			Prompts: transform.Prompts{
				System:    cfg.Prompt.System,
				Text:      cfg.Prompt.Text,
				Code:      cfg.Prompt.Code,
				Table:     cfg.Prompt.Table,
				Tone:      cfg.Prompt.Tone,
				Verbosity: cfg.Prompt.Verbosity,
			},
		}, log)
		p.transform = t.Transform
	}

	recorder, err := telemetry.NewRecorder(s.telemetry.Meter())
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	orch := retry.New(cfg.Backends(), retry.Policy{
		MaxRetries: cfg.RetryLimit(),
		BaseDelay:  cfg.Retry.BaseDelay,
		Timeout:    cfg.Retry.Timeout,
	}, log, retry.WithHook(recorder), retry.WithSleep(s.sleep))

	p.scheduler = scheduler.New(orch, scheduler.Options{
		Mode:                  scheduler.Mode(cfg.Retry.Mode),
		Parallelism:           cfg.Retry.Parallelism,
		RateLimitDelay:        cfg.RateLimitDelay(),
		AutoContinueOnFailure: cfg.AutoContinue(),
	}, log,
		scheduler.WithObserver(recorder),
		scheduler.WithObserver(scheduler.ObserverFunc(p.onChunkResolved)),
		scheduler.WithSleep(s.sleep),
	)

	return p, nil
}

// onChunkResolved maps scheduler progress onto the transform stage range.
func (p *implProcessor) onChunkResolved(ctx context.Context, ev scheduler.Event) {
	ev.Percent = PercentChunk + (PercentTransform-PercentChunk)*float64(ev.Completed)/float64(ev.Total)
	p.notify(ctx, ev)
}

func (p *implProcessor) stage(ctx context.Context, stage string, percent float64) {
	p.notify(ctx, scheduler.Event{Stage: stage, ChunkIndex: -1, Percent: percent, Success: true})
}

func (p *implProcessor) notify(ctx context.Context, ev scheduler.Event) {
	for _, o := range p.observers {
		o.OnChunkResolved(ctx, ev)
	}
}
