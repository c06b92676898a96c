// Package server provides the HTTP front end for sdkchat: an HTML question form and a JSON API.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/sdkchat/internal/config"
	"github.com/hyperjump/sdkchat/internal/corpus"
	"github.com/hyperjump/sdkchat/internal/models"
	"github.com/hyperjump/sdkchat/internal/watcher"
	"go.uber.org/zap"
)

// AnswerService answers questions. Implemented by *answer.Service.
type AnswerService interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
}

// Retriever runs retrieval-only queries and describes the index. Implemented by *search.Engine.
type Retriever interface {
	Query(ctx context.Context, q *models.SearchQuery, defaultLimit int) (*models.SearchResponse, error)
	Size() int
	Dimensions() int
	IndexType() string
}

// DriftReporter reports whether the corpus changed on disk after indexing.
// Implemented by *watcher.Watcher.
type DriftReporter interface {
	Status() watcher.Status
}

// Server is the HTTP server for sdkchat.
type Server struct {
	answers   AnswerService
	retriever Retriever
	report    *corpus.Report
	drift     DriftReporter
	topK      int
	config    *config.ServerConfig
	logger    *zap.Logger
	page      *template.Template
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithCorpusReport attaches the load report shown by /api/v1/status.
func WithCorpusReport(r *corpus.Report) Option {
	return func(s *Server) { s.report = r }
}

// WithDrift attaches the corpus drift watcher.
func WithDrift(d DriftReporter) Option {
	return func(s *Server) { s.drift = d }
}

// WithTopK sets the default result count for /api/v1/search.
func WithTopK(k int) Option {
	return func(s *Server) {
		if k > 0 {
			s.topK = k
		}
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(answers AnswerService, retriever Retriever, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		answers:   answers,
		retriever: retriever,
		topK:      5,
		config:    cfg,
		logger:    logger,
		page:      template.Must(template.New("index").Parse(indexPage)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler. Generation blocks until the model
// answers, so no request timeout is applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleForm)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/answer", s.handleAnswer)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
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
