package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runOnce        bool
	runInterval    int
	resetProcessed bool
	feedOverride   string
)

// runCmd performs reconciliation passes against the configured feed.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run catalog reconciliation",
	Long: `Runs reconciliation passes on the configured interval until interrupted.

Each pass fetches the product feed, detects changed products by fingerprint,
and pushes them through the image, quick-reply, POS and combo pipeline.

Examples:
  # Run forever on the configured interval
  run

  # Single pass
  run --once

  # Single pass against a local feed export, reprocessing everything
  run --once --feed catalog.json --reset-processed`,
	RunE: runSync,
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single pass and exit")
	runCmd.Flags().IntVar(&runInterval, "interval", 0, "Override the pass interval in seconds")
	runCmd.Flags().BoolVar(&resetProcessed, "reset-processed", false, "Clear the processed set before the first pass")
	runCmd.Flags().StringVar(&feedOverride, "feed", "", "Override the product feed path or URL")

	RootCmd.AddCommand(runCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if feedOverride != "" {
		cfg.Source.Feed = feedOverride
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	eng, err := buildEngine(ctx, cfg, logg)
	if err != nil {
		return err
	}

	if resetProcessed {
		if err := eng.store.ResetProcessed(ctx); err != nil {
			return fmt.Errorf("failed to reset processed set: %w", err)
		}
		logg.Info("processed set cleared")
	}

	if runOnce {
		report, err := eng.orchestrator.RunOnce(ctx)
		if err != nil {
			return err
		}
		logg.Info("pass report",
			zap.String("pass_id", report.PassID),
			zap.Int("fetched", report.Fetched),
			zap.Int("unchanged", report.Unchanged),
			zap.Int("attempted", report.Attempted),
			zap.Int("completed", report.Completed),
			zap.Int("soft_failures", report.SoftFailures))
		return nil
	}

	interval := cfg.Sync.IntervalSeconds
	if runInterval > 0 {
		interval = runInterval
	}
	if interval <= 0 {
		interval = 30
	}

	logg.Info("starting reconciliation loop",
		zap.Int("interval_seconds", interval),
		zap.Bool("auto_reset", cfg.Sync.AutoReset))
	err = eng.orchestrator.RunForever(ctx, time.Duration(interval)*time.Second, cfg.Sync.AutoReset, nil)
	if errors.Is(err, context.Canceled) {
		logg.Info("shutting down")
		return nil
	}
	return err
}
