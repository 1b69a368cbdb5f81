package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"golang.org/x/sync/errgroup"
)

func (s *implScheduler) Run(ctx context.Context, chunks []chunker.Chunk, fn TransformFunc) ([]ChunkResult, error) {
	results := make([]ChunkResult, len(chunks))
	for i, ch := range chunks {
		results[i] = ChunkResult{Index: ch.Index, Skipped: true, ErrorMessage: "not processed"}
	}
	if len(chunks) == 0 {
		return results, nil
	}

	s.logger.Info(ctx, "Scheduling %d chunks (%s, parallelism %d)", len(chunks), s.opts.Mode, s.opts.Parallelism)

	if s.opts.Mode == ModeParallel {
		return s.runParallel(ctx, chunks, results, fn)
	}
	return s.runSequential(ctx, chunks, results, fn)
}

// runSequential resolves one chunk at a time, pausing between chunks.
func (s *implScheduler) runSequential(ctx context.Context, chunks []chunker.Chunk, results []ChunkResult, fn TransformFunc) ([]ChunkResult, error) {
	total := len(chunks)

	for i, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := s.process(ctx, ch, fn)
		results[i] = res
		s.emit(ctx, res, i+1, total)

		if !res.Success {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			if errors.Is(res.Err, retry.ErrAuth) || !s.opts.AutoContinueOnFailure {
				return results, &AbortError{ChunkIndex: ch.Index, Err: res.Err}
			}
		}

		if i < total-1 {
			if err := s.sleep(ctx, s.opts.RateLimitDelay); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

// runParallel starts fixed groups of Parallelism chunks and waits for each
// whole group before the next. A failed chunk never cancels its siblings;
// only an auth failure or the caller cancels the run.
func (s *implScheduler) runParallel(ctx context.Context, chunks []chunker.Chunk, results []ChunkResult, fn TransformFunc) ([]ChunkResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		total     = len(chunks)
		completed atomic.Int64
		abortOnce sync.Once
		abortErr  error
	)

	for start := 0; start < total; start += s.opts.Parallelism {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+s.opts.Parallelism, total)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				res := s.process(runCtx, chunks[i], fn)
				// Each goroutine owns slot i.
				results[i] = res
				s.emit(ctx, res, int(completed.Add(1)), total)

				if errors.Is(res.Err, retry.ErrAuth) {
					abortOnce.Do(func() {
						abortErr = &AbortError{ChunkIndex: chunks[i].Index, Err: res.Err}
						cancel()
					})
				}
				return nil
			})
		}
		_ = g.Wait()

		if abortErr != nil {
			return results, abortErr
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if end < total {
			if err := s.sleep(ctx, s.opts.RateLimitDelay); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

func (s *implScheduler) process(ctx context.Context, ch chunker.Chunk, fn TransformFunc) ChunkResult {
	resp, err := s.orch.Execute(ctx, ch.Index, func(ctx context.Context, backend string) (retry.Response, error) {
		return fn(ctx, ch, backend)
	})
	if err != nil {
		s.logger.Error(ctx, "Chunk %d failed: %v", ch.Index, err)
		return ChunkResult{
			Index:        ch.Index,
			ErrorMessage: err.Error(),
			Err:          err,
		}
	}

	return ChunkResult{
		Index:       ch.Index,
		OutputText:  resp.Text,
		BackendUsed: resp.Backend,
		Usage:       resp.Usage,
		Success:     true,
	}
}

func (s *implScheduler) emit(ctx context.Context, res ChunkResult, completed, total int) {
	if res.Success {
		s.logger.Info(ctx, "Chunk %d/%d completed (backend: %s)", completed, total, res.BackendUsed)
	}

	ev := Event{
		Stage:       StageTransform,
		ChunkIndex:  res.Index,
		Completed:   completed,
		Total:       total,
		Percent:     float64(completed) / float64(total) * 100,
		BackendUsed: res.BackendUsed,
		Success:     res.Success,
		Err:         res.Err,
	}
	for _, o := range s.observers {
		o.OnChunkResolved(ctx, ev)
	}
}
