package scheduler

import (
	"fmt"
	"time"
)

// Mode selects the scheduling discipline for a run.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// StageTransform is the stage reported in scheduler events.
const StageTransform = "transform"

// Options configures a Scheduler.
type Options struct {
	Mode                  Mode
	Parallelism           int
	RateLimitDelay        time.Duration
	AutoContinueOnFailure bool
}

// ChunkResult is the outcome of one chunk.
type ChunkResult struct {
	Index        int
	OutputText   string
	BackendUsed  string
	ErrorMessage string
	Success      bool
	// Skipped marks chunks that were never started because the run stopped.
	Skipped bool
	Usage   map[string]int
	Err     error
}

// Event is emitted after each chunk resolves.
type Event struct {
	Stage       string
	ChunkIndex  int
	Completed   int
	Total       int
	Percent     float64
	BackendUsed string
	Success     bool
	Err         error
}

// AbortError stops a run at ChunkIndex.
type AbortError struct {
	ChunkIndex int
	Err        error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("run aborted at chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}
