package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/lyu-lab/gazerun/internal/api"
	"github.com/lyu-lab/gazerun/internal/batch"
	"github.com/lyu-lab/gazerun/internal/config"
	"github.com/lyu-lab/gazerun/internal/events"
	"github.com/lyu-lab/gazerun/internal/merge"
	"github.com/lyu-lab/gazerun/internal/store"
)

func main() {
	cfg := config.Load()

	inputDir := flag.String("input", cfg.InputDir, "directory containing input .xlsx files")
	outputDir := flag.String("output", cfg.OutputDir, "directory for aggregated output files")
	sheet := flag.String("sheet", cfg.Sheet, "worksheet name to read from each file")
	threshold := flag.Float64("threshold", cfg.Threshold, "duration threshold in ms")
	mode := flag.String("mode", cfg.Mode, "partition mode: at-most or exact")
	workers := flag.Int("workers", cfg.Workers, "number of files to process in parallel")
	force := flag.Bool("force", false, "reprocess files already recorded in the state file")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot batch")
	flag.Parse()

	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional — without it results only go to xlsx)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set — running without persistence")
	}

	// NATS (optional — without it no events are published)
	var pub *events.Publisher
	if cfg.NatsURL != "" {
		client, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("failed to connect to NATS — continuing without events", "error", err)
		} else {
			defer client.Close()
			pub = events.NewPublisher(client)
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	batchCfg := batch.Config{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Sheet:     *sheet,
		Merge: merge.Options{
			Threshold:    *threshold,
			Mode:         merge.Mode(*mode),
			StepFallback: cfg.StepFallback,
		},
		Workers: *workers,
		Force:   *force,
	}

	if *serve {
		runServer(ctx, cfg, batchCfg, db, pub)
		return
	}

	runner := batch.NewRunner(batchCfg, db, pub, slog.Default())
	summary, err := runner.Run(ctx)
	if err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d files (%d failed, %d skipped): %d runs from %d rows, %d rows passed through\n",
		summary.Files, summary.FilesFailed, summary.Skipped,
		summary.Runs, summary.RowsMerged, summary.PassThrough)
	if summary.FilesFailed > 0 {
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Config, batchCfg batch.Config, db *store.Store, pub *events.Publisher) {
	// Batches triggered over HTTP run on the process context, never the
	// request context, and the handler gets the job id back immediately.
	startJob := func(_ context.Context, req api.JobRequest) (uuid.UUID, error) {
		jobCfg := batchCfg
		if req.InputDir != "" {
			jobCfg.InputDir = req.InputDir
		}
		if req.OutputDir != "" {
			jobCfg.OutputDir = req.OutputDir
		}
		if req.Threshold != nil {
			jobCfg.Merge.Threshold = *req.Threshold
		}
		if req.Mode != "" {
			jobCfg.Merge.Mode = merge.Mode(req.Mode)
		}
		jobCfg.Force = req.Force

		if err := jobCfg.Merge.Validate(); err != nil {
			return uuid.Nil, err
		}

		runner := batch.NewRunner(jobCfg, db, pub, slog.Default())
		jobID, _ := runner.Start(ctx)
		return jobID, nil
	}

	srv := api.NewServer(cfg.Port, cfg.APIToken, db, startJob)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("gazerun ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown error", "error", err)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
