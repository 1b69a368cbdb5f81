package scheduler

import (
	"context"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
)

// Scheduler runs every chunk through the retry orchestrator.
type Scheduler interface {
	// Run returns exactly one result per chunk, in chunk order. A non-nil
	// error means the run stopped early; results of chunks that were never
	// started are marked Skipped.
	Run(ctx context.Context, chunks []chunker.Chunk, fn TransformFunc) ([]ChunkResult, error)
}

// TransformFunc transforms one chunk on one backend.
type TransformFunc func(ctx context.Context, chunk chunker.Chunk, backend string) (retry.Response, error)

// Observer is told about every resolved chunk. In parallel mode it is called
// from several goroutines, in completion order.
type Observer interface {
	OnChunkResolved(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnChunkResolved(ctx context.Context, ev Event) {
	f(ctx, ev)
}
