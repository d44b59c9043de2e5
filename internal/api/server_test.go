package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(8760, "", nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := NewServer(8760, "", nil, nil)

	req := httptest.NewRequest("GET", "/api/v1/gazerun/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["service"] != "gazerun" {
		t.Errorf("expected service gazerun, got %q", body["service"])
	}
	if body["persistence"] != "disabled" {
		t.Errorf("expected persistence disabled, got %q", body["persistence"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := NewServer(8760, "", nil, nil)

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCreateJobRequiresToken(t *testing.T) {
	started := false
	srv := NewServer(8760, "secret", nil, func(ctx context.Context, req JobRequest) (uuid.UUID, error) {
		started = true
		return uuid.New(), nil
	})

	req := httptest.NewRequest("POST", "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if started {
		t.Error("job should not start without auth")
	}

	req = httptest.NewRequest("POST", "/api/v1/jobs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", w.Code)
	}
}

func TestCreateJob(t *testing.T) {
	var got JobRequest
	jobID := uuid.New()
	srv := NewServer(8760, "secret", nil, func(ctx context.Context, req JobRequest) (uuid.UUID, error) {
		got = req
		return jobID, nil
	})

	payload, _ := json.Marshal(JobRequest{InputDir: "custom_input", Force: true})
	req := httptest.NewRequest("POST", "/api/v1/jobs", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["job_id"] != jobID.String() {
		t.Errorf("expected job_id %s, got %q", jobID, body["job_id"])
	}
	if got.InputDir != "custom_input" {
		t.Errorf("expected input_dir custom_input, got %q", got.InputDir)
	}
	if !got.Force {
		t.Error("expected force to be set")
	}
}

func TestCreateJobReturnsBeforeBatchCompletes(t *testing.T) {
	release := make(chan struct{})
	batchDone := make(chan struct{})
	srv := NewServer(8760, "", nil, func(ctx context.Context, req JobRequest) (uuid.UUID, error) {
		go func() {
			<-release
			close(batchDone)
		}()
		return uuid.New(), nil
	})

	req := httptest.NewRequest("POST", "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	// The response is in hand while the batch is still running.
	select {
	case <-batchDone:
		t.Fatal("batch finished before the handler returned the job id")
	default:
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(body["job_id"]); err != nil {
		t.Errorf("job_id is not a uuid: %q", body["job_id"])
	}

	close(release)
	<-batchDone
}

func TestShutdownStopsServer(t *testing.T) {
	srv := NewServer(8760, "", nil, nil)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := srv.Start(); err != http.ErrServerClosed {
		t.Errorf("expected ErrServerClosed after shutdown, got %v", err)
	}
}

func TestCreateJobEmptyBody(t *testing.T) {
	srv := NewServer(8760, "", nil, func(ctx context.Context, req JobRequest) (uuid.UUID, error) {
		return uuid.New(), nil
	})

	req := httptest.NewRequest("POST", "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected 202 with empty body, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateJobWithoutRunner(t *testing.T) {
	srv := NewServer(8760, "", nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without runner, got %d", w.Code)
	}
}

func TestJobQueriesWithoutStore(t *testing.T) {
	srv := NewServer(8760, "", nil, nil)

	for _, path := range []string{
		"/api/v1/jobs",
		"/api/v1/jobs/" + uuid.NewString(),
		"/api/v1/jobs/" + uuid.NewString() + "/runs",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503 without store, got %d", path, w.Code)
		}
	}
}
