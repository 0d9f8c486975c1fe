// Package server exposes the review generator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/josephgoksu/SprintReview/internal/config"
	"github.com/josephgoksu/SprintReview/internal/loader"
	"github.com/josephgoksu/SprintReview/models"
	"go.uber.org/zap"
)

// Reviewer produces a performance review for one sprint and meeting.
// *review.Generator satisfies it.
type Reviewer interface {
	Generate(ctx context.Context, sprint models.Sprint, meeting models.Meeting) (models.PerformanceResult, error)
}

type Server struct {
	cfg      config.ServerConfig
	reviewer Reviewer
	fixtures *loader.Loader
	logger   *zap.Logger
	origins  map[string]struct{}
	handler  http.Handler
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithFixtureLoader sets the loader used in fixture mode. Defaults to the OS filesystem.
func WithFixtureLoader(l *loader.Loader) Option {
	return func(s *Server) { s.fixtures = l }
}

func New(cfg config.ServerConfig, reviewer Reviewer, log *zap.Logger, opts ...Option) (*Server, error) {
	if reviewer == nil {
		return nil, errors.New("reviewer is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		reviewer: reviewer,
		logger:   log,
		origins:  make(map[string]struct{}, len(cfg.AllowedOrigins)),
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[o] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fixtures == nil {
		s.fixtures = loader.NewOs()
	}

	s.handler = s.routes()
	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(s.requestDeadline)
		}
		r.Post("/", s.handleReview)
		r.Post("/api/reviews", s.handleReview)
	})
	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errChan
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
