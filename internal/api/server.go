package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lyu-lab/gazerun/internal/store"
)

type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	apiToken   string
	db         *store.Store // optional; job queries 503 without it
	startJob   JobStarter
}

func NewServer(port int, apiToken string, db *store.Store, startJob JobStarter) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
		apiToken: apiToken,
		db:       db,
		startJob: startJob,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/gazerun/status", s.status)

	router.Route("/api/v1/jobs", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/", s.createJob)
		r.Get("/", s.listJobs)
		r.Get("/{id}", s.getJob)
		r.Get("/{id}/runs", s.listRuns)
	})

	return s
}

func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish, up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	persistence := "disabled"
	if s.db != nil {
		persistence = "enabled"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"service":     "gazerun",
		"status":      "ready",
		"persistence": persistence,
	})
}

// BearerAuthMiddleware guards a route subtree with a static bearer token.
// An empty configured token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
