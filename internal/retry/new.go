package retry

import (
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
)

type implOrchestrator struct {
	backends []string
	policy   Policy
	logger   logger.Logger
	sleep    SleepFunc
	hooks    []Hook
}

// Option customizes an Orchestrator.
type Option func(*implOrchestrator)

// WithSleep replaces the timer-based sleep, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(o *implOrchestrator) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// WithHook registers an attempt observer.
func WithHook(h Hook) Option {
	return func(o *implOrchestrator) {
		if h != nil {
			o.hooks = append(o.hooks, h)
		}
	}
}

// New creates an Orchestrator over backends, primary first. The list is
// copied and stays fixed for the lifetime of the Orchestrator.
func New(backends []string, policy Policy, log logger.Logger, opts ...Option) Orchestrator {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	o := &implOrchestrator{
		backends: append([]string(nil), backends...),
		policy:   policy,
		logger:   log,
		sleep:    Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
