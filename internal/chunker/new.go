package chunker

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 8000

type implChunker struct {
	batchSize   int
	overlapSize int
}

// New creates a Chunker. Range validation of opts is the caller's job; only
// non-positive values are replaced so the splitter always terminates.
func New(opts Options) Chunker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.OverlapSize < 0 {
		opts.OverlapSize = 0
	}

	return &implChunker{
		batchSize:   opts.BatchSize,
		overlapSize: opts.OverlapSize,
	}
}
