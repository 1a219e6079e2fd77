// Package server provides the HTTP API for credo.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/credo/internal/config"
	"github.com/hyperjump/credo/internal/models"
	"github.com/hyperjump/credo/internal/pipeline"
	"github.com/hyperjump/credo/internal/storage"
)

// Analyzer produces a credibility report for normalized text. Satisfied by
// analysis.Analyzer; the indirection keeps handler tests off the network.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.Report, []byte, error)
}

// Server is the HTTP server for the credo API.
type Server struct {
	coordinator *pipeline.Coordinator
	analyzer    Analyzer
	storage     storage.Storage
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	coord *pipeline.Coordinator,
	analyzer Analyzer,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		coordinator: coord,
		analyzer:    analyzer,
		storage:     store,
		config:      cfg,
		logger:      logger,
	}
}

// Handler builds the router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware(s.config.Server.FrontendOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Post("/analyze", s.handleAnalyze)
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)
	r.Get("/api/v1/reports", s.handleListReports)
	r.Get("/api/v1/reports/{id}", s.handleGetReport)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
