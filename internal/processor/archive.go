package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// moveToArchived moves a processed source document into the archive folder.
// An existing file of the same name is kept; the new one gets a time suffix.
func (p *implProcessor) moveToArchived(ctx context.Context, path string) error {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}

	name := filepath.Base(path)
	dest := filepath.Join(p.cfg.Paths.Archived, name)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(name)
		dest = filepath.Join(p.cfg.Paths.Archived,
			fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), p.now().Format("20060102-150405"), ext))
	}

	p.logger.Info(ctx, "Moving to archived folder: %s -> %s", path, dest)

	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}
