package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateFileName is the resumable batch state, kept next to the output
// workbooks.
const StateFileName = "gazerun-state.json"

// State tracks progress for resumable batch runs. Files are recorded as
// they complete, so an interrupted batch resumes where it stopped. Safe
// for use from parallel file workers.
type State struct {
	mu              sync.Mutex
	StartedAt       time.Time `json:"started_at"`
	LastProcessedAt time.Time `json:"last_processed_at"`
	FilesProcessed  []string  `json:"files_processed"`
	FilesRemaining  int       `json:"files_remaining"`
	RunsProduced    int       `json:"runs_produced"`
	RowsMerged      int       `json:"rows_merged"`
	Errors          []string  `json:"errors"`

	path string // not serialized
}

// LoadState loads the batch state from the output directory, or creates a
// fresh one.
func LoadState(outputDir string) (*State, error) {
	p := filepath.Join(outputDir, StateFileName)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the given file has already been processed.
func (s *State) IsProcessed(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.FilesProcessed {
		if f == path {
			return true
		}
	}
	return false
}

// MarkProcessed records a file as processed.
func (s *State) MarkProcessed(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilesProcessed = append(s.FilesProcessed, path)
	if s.FilesRemaining > 0 {
		s.FilesRemaining--
	}
}

// AddCounts accumulates per-file output counters.
func (s *State) AddCounts(runs, rowsMerged int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RunsProduced += runs
	s.RowsMerged += rowsMerged
}

// AddError records a processing error.
func (s *State) AddError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
}
