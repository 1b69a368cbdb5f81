package transform

import (
	"context"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"google.golang.org/genai"
)

// Transformer turns one chunk into spoken-style text on a named backend
// model. Its Transform method satisfies scheduler.TransformFunc.
type Transformer interface {
	Transform(ctx context.Context, chunk chunker.Chunk, backend string) (retry.Response, error)
}

// GenerateFunc performs one GenerateContent call with the given API key.
type GenerateFunc func(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
