package output

import "context"

// Writer persists the reconciled text of one document.
type Writer interface {
	// Write creates one file per configured format in the output directory
	// and returns their paths. The report, when enabled, is written last.
	Write(ctx context.Context, doc Document) ([]string, error)
}
