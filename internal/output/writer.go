package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04")
}

// Write renders doc in every configured format.
func (w *implWriter) Write(ctx context.Context, doc Document) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Join(w.dir, safeName(doc.Title))
	var written []string

	for _, format := range w.formats {
		path := base + "." + format

		var err error
		switch format {
		case FormatMarkdown:
			md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n", doc.Title, w.now(), strings.TrimSpace(doc.Text))
			err = os.WriteFile(path, []byte(md), 0644)
		case FormatText:
			err = os.WriteFile(path, []byte(strings.TrimSpace(doc.Text)+"\n"), 0644)
		case FormatDocx:
			err = markdownToDocx(doc.Title, doc.Text, path)
		default:
			err = fmt.Errorf("unsupported format %q", format)
		}
		if err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}

		w.logger.Info(ctx, "Wrote %s", path)
		written = append(written, path)
	}

	if w.report {
		path := base + ".report.yaml"
		report := doc.Report
		report.Outputs = written
		if err := writeReport(path, report); err != nil {
			return written, fmt.Errorf("write report: %w", err)
		}
		written = append(written, path)
	}

	return written, nil
}

func writeReport(path string, report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadReport loads a report written by Write.
func ReadReport(path string) (Report, error) {
	var report Report
	data, err := os.ReadFile(path)
	if err != nil {
		return report, err
	}
	err = yaml.Unmarshal(data, &report)
	return report, err
}

// safeName keeps titles usable as file names.
func safeName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, title)
}
