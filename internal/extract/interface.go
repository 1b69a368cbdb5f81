package extract

import (
	"context"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
)

// Document is the text content of one input file.
type Document struct {
	Path   string
	Title  string
	Format string
	Text   string
	// Elements is the typed block structure of Text.
	Elements []chunker.Element
}

// Extractor reads documents from disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (Document, error)
}
