// Package api exposes the answering pipeline over HTTP.
//
// Endpoints:
//
//	GET  /health                  → liveness probe
//	GET  /ready                   → readiness probe (pings the database)
//	GET  /api/v1/info             → service banner (model, corpus size, languages)
//	POST /api/v1/query            → answer a question
//	GET  /api/v1/query/stream     → answer a question over SSE
//	POST /api/v1/documents        → add a document to the corpus
//	GET  /api/v1/documents        → list documents
//
// The voice endpoints of the assistant (speech-to-text, audio playback,
// WebSocket voice) live in a separate service; this server only speaks text.
//
// File structure:
//   - server.go: server setup and lifecycle
//   - middleware.go: recovery, logging, middleware chaining
//   - ratelimit.go: per-IP token bucket
//   - health.go: /health and /ready
//   - query.go: query and SSE streaming endpoints
//   - documents.go: corpus management endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/log"
	"github.com/malayalamlabs/sahayi/internal/rag"
)

const (
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout prevents Slowloris-style header dribbling.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout bounds reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout bounds the response. SSE streaming needs headroom.
	WriteTimeout = 2 * time.Minute
)

// documentStore is the corpus surface the server needs, implemented by
// knowledge.Store.
type documentStore interface {
	Insert(ctx context.Context, english, malayalam, manglish string) (string, error)
	List(ctx context.Context, limit, offset int32) ([]knowledge.Document, error)
	Count(ctx context.Context) (int64, error)
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Logger    log.Logger
	Pipeline  *rag.Pipeline // Required
	Store     documentStore // Required
	Pool      *pgxpool.Pool // Optional: nil degrades /ready
	Model     string        // Generation model name, for /api/v1/info
	Version   string        // Build version, for /api/v1/info
	RateBurst int           // Per-IP burst (0 = default 60)
}

// Server is the HTTP server for the assistant API.
type Server struct {
	handler http.Handler
	logger  log.Logger
}

// NewServer creates the server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("document store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()

	hh := &healthHandler{pool: cfg.Pool, logger: logger}
	mux.HandleFunc("GET /health", hh.liveness)
	mux.HandleFunc("GET /ready", hh.readiness)

	qh := &queryHandler{pipeline: cfg.Pipeline, logger: logger}
	mux.HandleFunc("POST /api/v1/query", qh.query)
	mux.HandleFunc("GET /api/v1/query/stream", qh.stream)

	dh := &documentHandler{store: cfg.Store, logger: logger}
	mux.HandleFunc("POST /api/v1/documents", dh.create)
	mux.HandleFunc("GET /api/v1/documents", dh.list)

	ih := &infoHandler{store: cfg.Store, model: cfg.Model, version: cfg.Version}
	mux.HandleFunc("GET /api/v1/info", ih.info)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	handler := chain(mux,
		recoveryMiddleware(logger),
		loggingMiddleware(logger),
		rateLimitMiddleware(rl, logger),
	)

	return &Server{handler: handler, logger: logger}, nil
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
