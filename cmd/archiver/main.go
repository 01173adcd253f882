// Package main is the entry point for the stale project archiver.
// It runs one archive pass and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kandev/archiver/internal/archiver"
	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/constants"
	"github.com/kandev/archiver/internal/common/logger"
	"github.com/kandev/archiver/internal/common/tracing"
	"github.com/kandev/archiver/internal/events"
	"github.com/kandev/archiver/internal/notifications"
	"github.com/kandev/archiver/internal/tracker"
)

func main() {
	configDir := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadWithPath(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	// 3. Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.TraceFlushTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// 4. Run once. A failed run is logged and still exits 0.
	report, err := execute(ctx, cfg, log)
	logOutcome(log, report, err)
}

// execute wires the archive service from cfg and runs it once.
func execute(ctx context.Context, cfg *config.Config, log *logger.Logger) (*archiver.Report, error) {
	eventBus, closeBus := events.Provide(cfg.NATS, log)
	defer closeBus()

	svc := archiver.NewService(
		tracker.NewBasicAuthClient(cfg.Tracker),
		notifications.Provide(cfg.Slack, log),
		events.NewPublisher(eventBus, cfg.NATS.SubjectPrefix, log),
		cfg.Archive,
		log,
	)

	log.Info("Starting archive run",
		zap.String("tracker", cfg.Tracker.BaseURL),
		zap.Int("retention_months", cfg.Archive.RetentionMonths),
	)
	return svc.Run(ctx)
}

// logOutcome reports the result of a run. Projects archived before a failure
// are listed so an operator can tell what already changed.
func logOutcome(log *logger.Logger, report *archiver.Report, err error) {
	if err == nil {
		log.Info("Archive run finished",
			zap.String("run_id", report.RunID),
			zap.Strings("archived", report.Archived),
		)
		return
	}

	fields := []zap.Field{zap.Error(err)}
	if report != nil {
		fields = append(fields,
			zap.String("run_id", report.RunID),
			zap.Strings("archived_before_failure", report.Archived),
		)
	}
	log.Error("Archive run failed", fields...)
}
