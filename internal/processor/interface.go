package processor

import "context"

// Processor converts documents into spoken-style text.
type Processor interface {
	// Convert runs the whole pipeline for one document and writes its outputs.
	Convert(ctx context.Context, path string) (Result, error)

	// Process converts path and then moves the source into the archive
	// folder. It is the handler used by the directory watcher.
	Process(ctx context.Context, path string) error
}
