package extract

import (
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"github.com/nguyentantai21042004/chunkflow/pkg/executor"
)

type implExtractor struct {
	executor executor.Executor
	logger   logger.Logger
	pdfTool  string
}

// New creates an Extractor. PDF text is obtained by running pdftotext
// through exec.
func New(exec executor.Executor, log logger.Logger) Extractor {
	return &implExtractor{
		executor: exec,
		logger:   log,
		pdfTool:  "pdftotext",
	}
}
