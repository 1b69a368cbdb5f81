package transform

import (
	"sync"

	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"google.golang.org/genai"
)

type implTransformer struct {
	keys    []string
	params  Params
	prompts Prompts
	logger  logger.Logger

	mu         sync.Mutex
	currentKey int
	clients    map[string]*genai.Client

	generate GenerateFunc
}

// Option customizes a Transformer.
type Option func(*implTransformer)

// WithGenerateFunc replaces the Gemini client call, mainly for tests.
func WithGenerateFunc(fn GenerateFunc) Option {
	return func(t *implTransformer) {
		if fn != nil {
			t.generate = fn
		}
	}
}

// New creates a Transformer that rotates through the supplied Gemini API
// keys whenever one is rate limited.
func New(opts Options, log logger.Logger, options ...Option) Transformer {
	t := &implTransformer{
		keys:    append([]string(nil), opts.APIKeys...),
		params:  opts.Params,
		prompts: opts.Prompts.withDefaults(),
		logger:  log,
		clients: make(map[string]*genai.Client),
	}
	t.generate = t.generateWithClient
	for _, o := range options {
		o(t)
	}
	return t
}
