package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// JobRequest is the POST body for triggering a batch job. Unset fields fall
// back to the server's configured defaults.
type JobRequest struct {
	InputDir  string   `json:"input_dir,omitempty"`
	OutputDir string   `json:"output_dir,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Force     bool     `json:"force,omitempty"`
}

// JobStarter launches a batch run and returns its job id.
type JobStarter func(ctx context.Context, req JobRequest) (uuid.UUID, error)

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	if s.startJob == nil {
		http.Error(w, `{"error":"job runner not configured"}`, http.StatusServiceUnavailable)
		return
	}

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, fmt.Sprintf(`{"error":"invalid request body: %v"}`, err), http.StatusBadRequest)
		return
	}

	jobID, err := s.startJob(r.Context(), req)
	if err != nil {
		internalError(w, "start job", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"job_id": jobID.String()})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"persistence not configured"}`, http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"limit must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	jobs, err := s.db.ListJobs(r.Context(), limit)
	if err != nil {
		internalError(w, "list jobs", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"persistence not configured"}`, http.StatusServiceUnavailable)
		return
	}

	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}

	job, err := s.db.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(job)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"persistence not configured"}`, http.StatusServiceUnavailable)
		return
	}

	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}

	runs, err := s.db.ListRuns(r.Context(), jobID)
	if err != nil {
		internalError(w, "list runs", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"runs": runs, "count": len(runs)})
}

func internalError(w http.ResponseWriter, op string, err error) {
	http.Error(w, fmt.Sprintf(`{"error":"%s: %v"}`, op, err), http.StatusInternalServerError)
}
