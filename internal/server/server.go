// Package server implements the geodash HTTP API.
//
// The API exposes snapshot rendering and storage plus hierarchy chart
// building over JSON, backed by the same pipeline the CLI uses.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DavideDeMarchi/geodash/pkg/catalog"
	"github.com/DavideDeMarchi/geodash/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr   string // listen address (default ":8080")
	Store  catalog.Store
	Runner *pipeline.Runner
	Logger *log.Logger
}

// Server serves the geodash HTTP API.
type Server struct {
	addr   string
	store  catalog.Store
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server. A nil store falls back to in-memory storage, a
// nil runner to a cacheless pipeline.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Store == nil {
		cfg.Store = catalog.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	return &Server{
		addr:   cfg.Addr,
		store:  cfg.Store,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", s.handleCreateSnapshot)
			r.Get("/", s.handleListSnapshots)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Get("/{id}/image", s.handleGetSnapshotImage)
			r.Delete("/{id}", s.handleDeleteSnapshot)
		})
		r.Post("/trees", s.handleBuildTree)
	})

	return r
}

// Run starts the server and blocks until the context is canceled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs each request with method, path, status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
