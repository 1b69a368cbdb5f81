package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/nguyentantai21042004/chunkflow/internal/config"
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
	"github.com/nguyentantai21042004/chunkflow/internal/telemetry"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "chunkflow",
	Short: "Convert long documents into spoken-style text",
	Long: `chunkflow splits long documents into overlapping chunks, rewrites each chunk
with Gemini (retrying and falling back across models), and stitches the results
back into one text ready for text-to-speech.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// app bundles what every command needs.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	telemetry telemetry.Provider
}

func setup(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if isDebug {
		level = "debug"
	}
	log := logger.New(level, cfg.Logging.Format)

	tp, err := telemetry.New(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Exporter: cfg.Telemetry.Exporter,
		Version:  Version,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	log.Info(ctx, "chunkflow %s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
	log.Debug(ctx, "Configuration loaded from %s", cfgPath)

	return &app{cfg: cfg, log: log, telemetry: tp}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.log.Warn(ctx, "Telemetry shutdown: %v", err)
	}
}

// progressLogger reports pipeline stages through the logger.
func (a *app) progressLogger() scheduler.Observer {
	return scheduler.ObserverFunc(func(ctx context.Context, ev scheduler.Event) {
		if ev.Stage == scheduler.StageTransform {
			if ev.Success {
				a.log.Info(ctx, "[%3.0f%%] chunk %d/%d done (model: %s)", ev.Percent, ev.Completed, ev.Total, ev.BackendUsed)
			} else {
				a.log.Warn(ctx, "[%3.0f%%] chunk %d/%d failed: %v", ev.Percent, ev.Completed, ev.Total, ev.Err)
			}
			return
		}
		a.log.Info(ctx, "[%3.0f%%] %s", ev.Percent, ev.Stage)
	})
}
