// Package batch drives the offline pipeline: discover input workbooks,
// merge each one, write result workbooks, and report per-file outcomes
// without letting one bad file abort the batch.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lyu-lab/gazerun/internal/events"
	"github.com/lyu-lab/gazerun/internal/merge"
	"github.com/lyu-lab/gazerun/internal/store"
	"github.com/lyu-lab/gazerun/internal/workbook"
)

// lockFilePrefix marks temporary spreadsheet lock files like "~$session.xlsx".
const lockFilePrefix = "~$"

// Config holds the batch runner configuration.
type Config struct {
	InputDir  string
	OutputDir string
	Sheet     string
	Merge     merge.Options
	Workers   int
	Force     bool // reprocess files already recorded in the state file
}

// Runner orchestrates one batch run over an input directory.
type Runner struct {
	cfg    Config
	store  *store.Store      // optional, nil disables persistence
	events *events.Publisher // optional, nil drops events
	logger *slog.Logger
}

// NewRunner creates a batch runner. Store and events may be nil.
func NewRunner(cfg Config, s *store.Store, pub *events.Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		store:  s,
		events: pub,
		logger: logger,
	}
}

// Summary reports the outcome of one batch run.
type Summary struct {
	JobID       uuid.UUID
	Files       int
	FilesFailed int
	Skipped     int
	Runs        int
	RowsMerged  int
	PassThrough int
	Errors      []string
}

type fileResult struct {
	file        string
	runs        int
	rowsMerged  int
	passThrough int
	err         error
}

// Run executes the batch and blocks until it finishes. It is fatal when
// the input directory is missing or holds no input files; individual file
// failures are collected and reported instead.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	return r.run(ctx, uuid.New())
}

// Start launches the batch in the background and returns its job id right
// away. The summary arrives on the returned channel, which is closed
// without a value when the batch fails outright. The batch runs on the
// given context, so callers serving HTTP should pass a process-lifetime
// context rather than a request context.
func (r *Runner) Start(ctx context.Context) (uuid.UUID, <-chan *Summary) {
	jobID := uuid.New()
	done := make(chan *Summary, 1)
	go func() {
		defer close(done)
		summary, err := r.run(ctx, jobID)
		if err != nil {
			r.logger.Error("batch failed", "job_id", jobID, "error", err)
			return
		}
		done <- summary
	}()
	return jobID, done
}

func (r *Runner) run(ctx context.Context, jobID uuid.UUID) (*Summary, error) {
	if err := r.cfg.Merge.Validate(); err != nil {
		return nil, err
	}

	files, err := r.discoverFiles()
	if err != nil {
		return nil, err
	}

	state, err := LoadState(r.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var pending []string
	skipped := 0
	for _, f := range files {
		if !r.cfg.Force && state.IsProcessed(f) {
			skipped++
			continue
		}
		pending = append(pending, f)
	}

	r.logger.Info("files discovered",
		"total", len(files),
		"pending", len(pending),
		"skipped", skipped,
	)

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if r.store != nil {
		err := r.store.CreateJob(ctx, jobID, store.JobConfig{
			InputDir:     r.cfg.InputDir,
			Threshold:    r.cfg.Merge.Threshold,
			Mode:         string(r.cfg.Merge.Mode),
			StepFallback: r.cfg.Merge.StepFallback,
		})
		if err != nil {
			return nil, fmt.Errorf("create job: %w", err)
		}
	}

	if err := r.events.JobStarted(events.JobStarted{
		JobID:     jobID.String(),
		InputDir:  r.cfg.InputDir,
		Files:     len(pending),
		Threshold: r.cfg.Merge.Threshold,
		Mode:      string(r.cfg.Merge.Mode),
		Timestamp: time.Now().UTC(),
	}); err != nil {
		r.logger.Warn("failed to publish job started", "error", err)
	}

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	state.FilesRemaining = len(pending)

	// Per-group output order is fixed by the engine, so parallelism across
	// files changes wall-clock time only, never which rows merge. State is
	// marked and saved per file, so an interrupted batch resumes.
	results := make([]fileResult, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range pending {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = r.processFile(gctx, jobID, path)
			r.reportFile(jobID, state, results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Info("batch interrupted", "files_done", len(state.FilesProcessed))
		return nil, err
	}

	summary := &Summary{JobID: jobID, Skipped: skipped}
	for _, res := range results {
		if res.err != nil {
			summary.FilesFailed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", filepath.Base(res.file), res.err))
			continue
		}
		summary.Files++
		summary.Runs += res.runs
		summary.RowsMerged += res.rowsMerged
		summary.PassThrough += res.passThrough
	}
	if err := state.Save(); err != nil {
		r.logger.Warn("failed to save state", "error", err)
	}

	if r.store != nil {
		if err := r.store.FinishJob(ctx, jobID, summary.Files, summary.FilesFailed, summary.Runs); err != nil {
			r.logger.Warn("failed to finish job record", "error", err)
		}
	}

	if err := r.events.JobCompleted(events.JobCompleted{
		JobID:       jobID.String(),
		Files:       summary.Files,
		FilesFailed: summary.FilesFailed,
		Runs:        summary.Runs,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		r.logger.Warn("failed to publish job completed", "error", err)
	}

	r.logger.Info("batch complete",
		"job_id", jobID,
		"files_processed", summary.Files,
		"files_failed", summary.FilesFailed,
		"files_skipped", summary.Skipped,
		"runs", summary.Runs,
		"rows_merged", summary.RowsMerged,
	)

	return summary, nil
}

// discoverFiles lists the input workbooks in lexicographic order, skipping
// spreadsheet lock files.
func (r *Runner) discoverFiles() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("input folder not found: %s: %w", r.cfg.InputDir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, lockFilePrefix) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		files = append(files, filepath.Join(r.cfg.InputDir, name))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xlsx files found in: %s", r.cfg.InputDir)
	}
	return files, nil
}

func (r *Runner) processFile(ctx context.Context, jobID uuid.UUID, path string) fileResult {
	res := fileResult{file: path}

	r.logger.Info("processing file", "path", path)

	table, err := workbook.ReadTable(path, r.cfg.Sheet)
	if err != nil {
		res.err = fmt.Errorf("read: %w", err)
		return res
	}

	merged, err := merge.Merge(table.Rows, r.cfg.Merge)
	if err != nil {
		res.err = fmt.Errorf("merge: %w", err)
		return res
	}

	outPath := r.outputPath(path)
	if err := workbook.WriteResult(outPath, merged, table, r.cfg.Merge); err != nil {
		res.err = fmt.Errorf("write: %w", err)
		return res
	}

	if r.store != nil {
		if err := r.store.WriteFileResult(ctx, jobID, filepath.Base(path), merged); err != nil {
			res.err = fmt.Errorf("persist: %w", err)
			return res
		}
	}

	res.runs = len(merged.Runs)
	res.rowsMerged = len(merged.Mergeable)
	res.passThrough = len(merged.PassThrough)

	r.logger.Info("file processed",
		"path", path,
		"output", outPath,
		"runs", res.runs,
		"rows_merged", res.rowsMerged,
		"pass_through", res.passThrough,
	)
	return res
}

// outputPath derives "<stem>_aggregated.xlsx" in the output directory.
func (r *Runner) outputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(r.cfg.OutputDir, stem+"_aggregated.xlsx")
}

// reportFile records one file's outcome in the resumable state and on the
// event bus. State is saved immediately so a later interrupt loses nothing.
func (r *Runner) reportFile(jobID uuid.UUID, state *State, res fileResult) {
	name := filepath.Base(res.file)
	if res.err != nil {
		state.AddError(fmt.Sprintf("%s: %v", name, res.err))
	} else {
		state.MarkProcessed(res.file)
		state.AddCounts(res.runs, res.rowsMerged)
	}
	if err := state.Save(); err != nil {
		r.logger.Warn("failed to save state", "error", err)
	}

	if res.err != nil {
		r.logger.Error("file failed", "path", res.file, "error", res.err)
		if err := r.events.FileFailed(events.FileFailed{
			JobID:     jobID.String(),
			File:      name,
			Error:     res.err.Error(),
			Timestamp: time.Now().UTC(),
		}); err != nil {
			r.logger.Warn("failed to publish file failed", "error", err)
		}
		return
	}
	if err := r.events.FileCompleted(events.FileCompleted{
		JobID:       jobID.String(),
		File:        name,
		Runs:        res.runs,
		RowsMerged:  res.rowsMerged,
		PassThrough: res.passThrough,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		r.logger.Warn("failed to publish file completed", "error", err)
	}
}
