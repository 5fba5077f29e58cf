// Package api implements the histvet HTTP validation service.
//
// The service exposes the checker to ingest pipelines that validate
// candidate histories before accepting them:
//
//	POST /v1/check        validate a commit list, optionally persist a report
//	GET  /v1/reports/{id} fetch a stored validation report
//	GET  /v1/reports      list recent reports
//	GET  /healthz         liveness probe
//
// Every request gets its own pipeline run with exclusively-owned graph
// state, so the service needs no locking around the checker.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jmalbrecht/histvet/pkg/pipeline"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// Server holds the service's collaborators.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. The store may be nil, in which case report
// endpoints return 404 and check requests never persist.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Get("/reports", s.handleRecentReports)
		r.Get("/reports/{id}", s.handleReport)
	})
	return r
}

// requestIDHeader carries the per-request UUID in responses.
const requestIDHeader = "X-Request-Id"

// requestID assigns a UUID to each request unless the client supplied one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", ww.Header().Get(requestIDHeader))
	})
}
