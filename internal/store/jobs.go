package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobConfig is the configuration snapshot persisted with each batch job.
type JobConfig struct {
	InputDir     string
	Threshold    float64
	Mode         string
	StepFallback bool
}

// Job is one batch run as recorded in merge_jobs.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	InputDir    string     `json:"input_dir"`
	Threshold   float64    `json:"threshold"`
	Mode        string     `json:"mode"`
	Files       int        `json:"files"`
	FilesFailed int        `json:"files_failed"`
	Runs        int        `json:"runs"`
}

// CreateJob inserts a merge_jobs row under the caller's job id. Ids are
// allocated by the caller so they can be handed out before the job runs.
func (s *Store) CreateJob(ctx context.Context, jobID uuid.UUID, cfg JobConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO merge_jobs (id, input_dir, threshold, mode, step_fallback, started_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		jobID, cfg.InputDir, cfg.Threshold, cfg.Mode, cfg.StepFallback,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// FinishJob records the final counters and completion time for a job.
func (s *Store) FinishJob(ctx context.Context, jobID uuid.UUID, files, filesFailed, runs int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE merge_jobs
		SET files = $1, files_failed = $2, runs = $3, finished_at = now()
		WHERE id = $4`,
		files, filesFailed, runs, jobID,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// GetJob fetches one job by id.
func (s *Store) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	var job Job
	err := s.pool.QueryRow(ctx, `
		SELECT id, started_at, finished_at, input_dir, threshold, mode,
		       COALESCE(files, 0), COALESCE(files_failed, 0), COALESCE(runs, 0)
		FROM merge_jobs WHERE id = $1`,
		jobID,
	).Scan(&job.ID, &job.StartedAt, &job.FinishedAt, &job.InputDir,
		&job.Threshold, &job.Mode, &job.Files, &job.FilesFailed, &job.Runs)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// ListJobs returns the most recent jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, started_at, finished_at, input_dir, threshold, mode,
		       COALESCE(files, 0), COALESCE(files_failed, 0), COALESCE(runs, 0)
		FROM merge_jobs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.StartedAt, &job.FinishedAt, &job.InputDir,
			&job.Threshold, &job.Mode, &job.Files, &job.FilesFailed, &job.Runs); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
