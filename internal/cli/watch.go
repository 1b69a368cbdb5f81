package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/chunkflow/internal/config"
	"github.com/nguyentantai21042004/chunkflow/internal/extract"
	"github.com/nguyentantai21042004/chunkflow/internal/processor"
	"github.com/nguyentantai21042004/chunkflow/internal/watcher"
	"github.com/nguyentantai21042004/chunkflow/pkg/executor"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert every document dropped into the input folder",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	// Verify required directories exist
	if err := ensureDirectories(a.cfg); err != nil {
		return err
	}

	proc, err := processor.New(a.cfg, executor.New(), a.log,
		processor.WithTelemetry(a.telemetry),
		processor.WithObserver(a.progressLogger()),
	)
	if err != nil {
		return err
	}

	w, err := watcher.New(a.cfg.Paths.Input, proc.Process, a.log, watcher.Options{
		MaxConcurrent: a.cfg.Performance.MaxConcurrent,
		SettleDelay:   500 * time.Millisecond,
		Accept:        extract.Supported,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Document pipeline is ready!")
	a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
	a.log.Info(ctx, "Output: %s", a.cfg.Paths.Output)
	a.log.Info(ctx, "Models: %v (%s mode)", a.cfg.Backends(), a.cfg.Retry.Mode)
	a.log.Info(ctx, "Concurrent: %d documents at once", a.cfg.Performance.MaxConcurrent)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	err = w.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher: %w", err)
	}

	a.log.Info(context.Background(), "Document pipeline stopped")
	return nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
