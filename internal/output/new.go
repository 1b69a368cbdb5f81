package output

import (
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
)

type implWriter struct {
	dir     string
	formats []string
	report  bool
	logger  logger.Logger
	now     func() string
}

// New creates a Writer for dir. formats are md, txt or docx; report adds a
// YAML run report next to them.
func New(dir string, formats []string, report bool, log logger.Logger) Writer {
	return &implWriter{
		dir:     dir,
		formats: append([]string(nil), formats...),
		report:  report,
		logger:  log,
		now:     timestamp,
	}
}
