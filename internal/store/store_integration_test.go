//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/lyu-lab/gazerun/internal/merge"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_JobLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	jobID := uuid.New()
	err := s.CreateJob(ctx, jobID, JobConfig{
		InputDir:     "/data/in",
		Threshold:    20,
		Mode:         "at-most",
		StepFallback: true,
	})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if err := s.FinishJob(ctx, jobID, 3, 1, 42); err != nil {
		t.Fatalf("FinishJob failed: %v", err)
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Files != 3 || job.FilesFailed != 1 || job.Runs != 42 {
		t.Errorf("job counters = %d/%d/%d", job.Files, job.FilesFailed, job.Runs)
	}
	if job.FinishedAt == nil {
		t.Error("expected finished_at to be set")
	}
}

func TestIntegration_WriteAndListRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	jobID := uuid.New()
	if err := s.CreateJob(ctx, jobID, JobConfig{InputDir: "/data/in", Threshold: 20, Mode: "at-most"}); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	key := merge.Key{
		Recording:   "rec01",
		Participant: "P01",
		Position:    "Goalie",
		TOI:         "Period1",
		Interval:    "1",
		EventType:   "Fixation",
		Validity:    "Whole",
	}
	res := &merge.Result{
		Runs: []merge.Run{
			{Key: key, RunID: 1, Start: 0, Stop: 40, Duration: 40, AOI: "Puck", SegmentsMerged: 2},
		},
		Mergeable: []merge.Row{{Key: key}, {Key: key}},
		AOISummary: []merge.AOITotal{
			{AOI: "Puck", Rows: 2, TotalDuration: 40, FirstStart: 0, LastStop: 40},
		},
	}

	if err := s.WriteFileResult(ctx, jobID, "session01.xlsx", res); err != nil {
		t.Fatalf("WriteFileResult failed: %v", err)
	}

	runs, err := s.ListRuns(ctx, jobID)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.File != "session01.xlsx" || run.AOI != "Puck" || run.SegmentsMerged != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.Start == nil || *run.Start != 0 || run.Stop == nil || *run.Stop != 40 {
		t.Errorf("run bounds = %v/%v", run.Start, run.Stop)
	}
}
