package store

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/lyu-lab/gazerun/internal/merge"
)

// StoredRun is one aggregated run as read back from merged_runs.
type StoredRun struct {
	ID             uuid.UUID `json:"id"`
	File           string    `json:"file"`
	Recording      string    `json:"recording"`
	Participant    string    `json:"participant"`
	Position       string    `json:"position"`
	TOI            string    `json:"toi"`
	Interval       string    `json:"interval"`
	EventType      string    `json:"event_type"`
	Validity       string    `json:"validity"`
	RunID          int       `json:"run_id"`
	Start          *float64  `json:"start"`
	Stop           *float64  `json:"stop"`
	Duration       *float64  `json:"duration"`
	AOI            string    `json:"aoi"`
	EventIndex     string    `json:"event_index,omitempty"`
	SegmentsMerged int       `json:"segments_merged"`
}

// WriteFileResult persists one file's merge output in a single transaction.
// Tables: merge_files, merged_runs, aoi_totals.
func (s *Store) WriteFileResult(ctx context.Context, jobID uuid.UUID, file string, res *merge.Result) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fileID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO merge_files (id, job_id, file, runs, rows_merged, pass_through, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		fileID, jobID, file, len(res.Runs), len(res.Mergeable), len(res.PassThrough),
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	for _, run := range res.Runs {
		_, err = tx.Exec(ctx, `
			INSERT INTO merged_runs (id, job_id, file_id, recording, participant, position,
				toi, interval, event_type, validity, run_id, start_ms, stop_ms,
				duration_ms, aoi, event_index, segments_merged)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			uuid.New(), jobID, fileID,
			run.Key.Recording, run.Key.Participant, run.Key.Position, run.Key.TOI,
			run.Key.Interval, run.Key.EventType, run.Key.Validity,
			run.RunID, numOrNil(run.Start), numOrNil(run.Stop), numOrNil(run.Duration),
			run.AOI, run.EventIndex, run.SegmentsMerged,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
	}

	for _, t := range res.AOISummary {
		_, err = tx.Exec(ctx, `
			INSERT INTO aoi_totals (id, job_id, file_id, scope, aoi, rows_counted,
				total_duration_ms, first_start_ms, last_stop_ms)
			VALUES ($1, $2, $3, 'overall', $4, $5, $6, $7, $8)`,
			uuid.New(), jobID, fileID, t.AOI, t.Rows,
			numOrNil(t.TotalDuration), numOrNil(t.FirstStart), numOrNil(t.LastStop),
		)
		if err != nil {
			return fmt.Errorf("insert aoi total: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListRuns returns the persisted runs for one job, in insertion order.
func (s *Store) ListRuns(ctx context.Context, jobID uuid.UUID) ([]StoredRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, f.file, r.recording, r.participant, r.position, r.toi,
		       r.interval, r.event_type, r.validity, r.run_id,
		       r.start_ms, r.stop_ms, r.duration_ms, r.aoi,
		       COALESCE(r.event_index, ''), r.segments_merged
		FROM merged_runs r
		JOIN merge_files f ON f.id = r.file_id
		WHERE r.job_id = $1
		ORDER BY f.file, r.recording, r.participant, r.position, r.toi,
		         r.interval, r.event_type, r.validity, r.start_ms, r.stop_ms`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []StoredRun
	for rows.Next() {
		var r StoredRun
		if err := rows.Scan(&r.ID, &r.File, &r.Recording, &r.Participant, &r.Position,
			&r.TOI, &r.Interval, &r.EventType, &r.Validity, &r.RunID,
			&r.Start, &r.Stop, &r.Duration, &r.AOI, &r.EventIndex,
			&r.SegmentsMerged); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// numOrNil maps NaN to SQL NULL.
func numOrNil(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
