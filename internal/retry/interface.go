package retry

import (
	"context"
	"time"
)

// Response is a successful transformation of one chunk.
type Response struct {
	Text    string
	Backend string
	Usage   map[string]int
}

// TransformFunc performs one attempt against backend. It must honor ctx.
type TransformFunc func(ctx context.Context, backend string) (Response, error)

// Orchestrator drives a TransformFunc across the backend list with retries.
type Orchestrator interface {
	// Execute returns the first successful response. Auth failures abort
	// immediately; otherwise every backend is tried MaxRetries+1 times before
	// an *ExhaustedError is returned.
	Execute(ctx context.Context, chunkIndex int, fn TransformFunc) (Response, error)

	// Backends returns the ordered backend list, primary first.
	Backends() []string
}

// Policy holds the retry parameters. Range validation is the caller's job.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Timeout bounds each call. Zero disables the per-call deadline.
	Timeout time.Duration
}

// Attempt describes one finished call, reported to a Hook.
type Attempt struct {
	ChunkIndex int
	Backend    string
	Number     int
	Duration   time.Duration
	Err        error
	Kind       Kind
	// Delay is the backoff scheduled after this attempt, zero if none.
	Delay time.Duration
}

// Hook observes attempts. Implementations must be safe for concurrent use.
type Hook interface {
	OnAttempt(ctx context.Context, a Attempt)
}

// SleepFunc suspends for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error
