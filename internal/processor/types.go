package processor

import (
	"errors"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/output"
	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
)

// Pipeline stages and the overall percentage reached when each finishes.
// The transform stage advances from PercentChunk to PercentTransform as
// chunks resolve.
const (
	StageExtract   = "extract"
	StageChunk     = "chunk"
	StageTransform = scheduler.StageTransform
	StageGenerate  = "generate"
	StageComplete  = "complete"

	PercentExtract   = 10.0
	PercentChunk     = 20.0
	PercentTransform = 80.0
	PercentGenerate  = 95.0
	PercentComplete  = 100.0
)

var (
	ErrEmptyDocument      = errors.New("document has no text")
	ErrNothingTransformed = errors.New("no chunk was transformed")
)

// Result is everything produced for one document.
type Result struct {
	Text    string
	Chunks  []chunker.Chunk
	Results []scheduler.ChunkResult
	Outputs []string
	Report  output.Report
}

// Failed returns the indices of chunks that did not succeed, skipped ones
// included.
func (r Result) Failed() []int {
	var idx []int
	for _, res := range r.Results {
		if !res.Success {
			idx = append(idx, res.Index)
		}
	}
	return idx
}
