package scheduler

import (
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
)

type implScheduler struct {
	orch      retry.Orchestrator
	opts      Options
	logger    logger.Logger
	sleep     retry.SleepFunc
	observers []Observer
}

// Option customizes a Scheduler.
type Option func(*implScheduler)

// WithSleep replaces the rate-limit sleep, mainly for tests.
func WithSleep(fn retry.SleepFunc) Option {
	return func(s *implScheduler) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithObserver registers an observer for chunk events.
func WithObserver(o Observer) Option {
	return func(s *implScheduler) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// New creates a Scheduler. An empty Mode means sequential.
func New(orch retry.Orchestrator, opts Options, log logger.Logger, options ...Option) Scheduler {
	if opts.Mode == "" {
		opts.Mode = ModeSequential
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}

	s := &implScheduler{
		orch:   orch,
		opts:   opts,
		logger: log,
		sleep:  retry.Sleep,
	}
	for _, o := range options {
		o(s)
	}
	return s
}
