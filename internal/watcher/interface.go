package watcher

import "context"

// Watcher monitors the input directory for new documents.
type Watcher interface {
	// Start handles documents already present, then blocks handling new
	// ones until ctx is done. In-flight handlers are awaited before return.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles file events
type EventHandler func(ctx context.Context, filePath string) error
