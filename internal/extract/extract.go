package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var ErrUnsupported = errors.New("unsupported document format")

var supported = map[string]string{
	".txt":      "text",
	".md":       "markdown",
	".markdown": "markdown",
	".pdf":      "pdf",
}

// Supported reports whether path has an extension the Extractor can read.
func Supported(path string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract reads path and returns its NFC-normalized text and elements.
func (e *implExtractor) Extract(ctx context.Context, path string) (Document, error) {
	format, ok := supported[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Document{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	var (
		raw string
		err error
	)
	switch format {
	case "pdf":
		raw, err = e.pdfText(ctx, path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		raw = string(data)
	}
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	text := normalize(raw)
	doc := Document{
		Path:   path,
		Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Format: format,
		Text:   text,
	}
	if format == "markdown" {
		doc.Elements = ParseMarkdown(text)
	} else {
		doc.Elements = paragraphs(text)
	}

	e.logger.Debug(ctx, "Extracted %s: %d chars, %d elements", path, len(text), len(doc.Elements))
	return doc, nil
}

// pdfText runs pdftotext in layout mode and writes the result to stdout.
func (e *implExtractor) pdfText(ctx context.Context, path string) (string, error) {
	out, err := e.executor.Execute(ctx, e.pdfTool, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	// Form feeds separate pages.
	return strings.ReplaceAll(out, "\f", "\n\n"), nil
}

// normalize converts line endings, drops trailing spaces and composes
// Unicode to NFC so that equal text compares equal during reconciliation.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = norm.NFC.String(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
