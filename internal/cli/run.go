package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/chunkflow/internal/processor"
	"github.com/nguyentantai21042004/chunkflow/pkg/executor"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file>...",
	Short: "Convert the given documents once",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	proc, err := processor.New(a.cfg, executor.New(), a.log,
		processor.WithTelemetry(a.telemetry),
		processor.WithObserver(a.progressLogger()),
	)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.Paths.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	failed := 0
	for _, path := range args {
		res, err := proc.Convert(ctx, path)
		if err != nil {
			a.log.Error(ctx, "Failed to convert %s: %v", path, err)
			failed++
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for _, out := range res.Outputs {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		if f := res.Failed(); len(f) > 0 {
			a.log.Warn(ctx, "%s: chunks %v are missing from the output", path, f)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}
