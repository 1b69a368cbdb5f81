package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

func (o *implOrchestrator) Backends() []string {
	return append([]string(nil), o.backends...)
}

// Execute tries each backend in order. The attempt counter resets per backend.
func (o *implOrchestrator) Execute(ctx context.Context, chunkIndex int, fn TransformFunc) (Response, error) {
	if len(o.backends) == 0 {
		return Response{}, ErrNoBackends
	}

	var (
		lastErr  error
		attempts int
	)

	for _, backend := range o.backends {
		for attempt := 0; attempt <= o.policy.MaxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return Response{}, err
			}

			attempts++
			o.logger.Debug(ctx, "Chunk %d: attempt %d with %s", chunkIndex, attempt+1, backend)

			start := time.Now()
			resp, err := o.call(ctx, backend, fn)
			elapsed := time.Since(start)

			if err == nil {
				if resp.Backend == "" {
					resp.Backend = backend
				}
				o.notify(ctx, Attempt{ChunkIndex: chunkIndex, Backend: backend, Number: attempt + 1, Duration: elapsed})
				return resp, nil
			}

			// A cancelled run is not a backend failure.
			if ctx.Err() != nil {
				return Response{}, ctx.Err()
			}

			lastErr = err
			kind := KindOf(err)
			o.logger.Warn(ctx, "Chunk %d: %s attempt %d failed (%s): %v", chunkIndex, backend, attempt+1, kind, err)

			if kind == KindAuth {
				o.notify(ctx, Attempt{ChunkIndex: chunkIndex, Backend: backend, Number: attempt + 1, Duration: elapsed, Err: err, Kind: kind})
				return Response{}, fmt.Errorf("chunk %d: %w", chunkIndex, err)
			}

			if attempt == o.policy.MaxRetries {
				o.notify(ctx, Attempt{ChunkIndex: chunkIndex, Backend: backend, Number: attempt + 1, Duration: elapsed, Err: err, Kind: kind})
				o.logger.Warn(ctx, "Chunk %d: max retries reached for %s", chunkIndex, backend)
				break
			}

			delay := o.delay(err, attempt)
			o.notify(ctx, Attempt{ChunkIndex: chunkIndex, Backend: backend, Number: attempt + 1, Duration: elapsed, Err: err, Kind: kind, Delay: delay})
			o.logger.Debug(ctx, "Chunk %d: retrying %s in %s", chunkIndex, backend, delay)

			if err := o.sleep(ctx, delay); err != nil {
				return Response{}, err
			}
		}
	}

	return Response{}, &ExhaustedError{
		ChunkIndex: chunkIndex,
		Attempts:   attempts,
		Backends:   o.Backends(),
		Last:       lastErr,
	}
}

// call runs one attempt under the per-call timeout. A deadline hit by the
// call itself, with the parent still live, is reported as KindTimeout.
func (o *implOrchestrator) call(ctx context.Context, backend string, fn TransformFunc) (Response, error) {
	if o.policy.Timeout <= 0 {
		return fn(ctx, backend)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.policy.Timeout)
	defer cancel()

	resp, err := fn(callCtx, backend)
	if err == nil || ctx.Err() != nil || !errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return resp, err
	}

	var classified *Error
	if !errors.As(err, &classified) {
		err = NewError(KindTimeout, backend, err)
	}
	return resp, err
}

// delay prefers the server hint, else BaseDelay * 2^attempt.
func (o *implOrchestrator) delay(err error, attempt int) time.Duration {
	if hint := RetryAfterOf(err); hint > 0 {
		return hint
	}
	return Backoff(o.policy.BaseDelay, attempt)
}

func (o *implOrchestrator) notify(ctx context.Context, a Attempt) {
	for _, h := range o.hooks {
		h.OnAttempt(ctx, a)
	}
}

// Backoff returns base * 2^attempt for a zero-based attempt number.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return base * time.Duration(1<<uint(attempt))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
