// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness and build version
//	POST /v1/layout   lay out a graph
//
// POST /v1/layout accepts either a JSON body {"graph": ..., "options": ...}
// or a YAML graph (Content-Type: application/yaml) with options in the
// query string. The layout is returned as JSON, or as msgpack when the
// client sends Accept: application/msgpack. The X-Cache response header
// reports whether the layout was served from the cache. The node limit and
// the layout timeout come from Config; requests cannot change them.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orthoflow/pkg/pipeline"
)

// Defaults for Config.
const (
	DefaultAddr          = ":8080"
	DefaultReadTimeout   = 30 * time.Second
	DefaultWriteTimeout  = 2 * time.Minute
	DefaultLayoutTimeout = time.Minute
	DefaultMaxBodyBytes  = 8 << 20
	DefaultMaxNodes      = pipeline.DefaultMaxNodes
	shutdownTimeout      = 10 * time.Second
)

// Config configures a Server. Zero fields take their defaults.
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	LayoutTimeout time.Duration
	MaxBodyBytes  int64
	// MaxNodes caps the graphs a client may submit.
	MaxNodes int
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.LayoutTimeout <= 0 {
		c.LayoutTimeout = DefaultLayoutTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = DefaultMaxNodes
	}
}

// Server serves layout requests through a pipeline.Runner.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil logger uses the default logger.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(limitBody(s.cfg.MaxBodyBytes))
		r.Post("/layout", s.handleLayout)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &APIError{Status: http.StatusMethodNotAllowed, Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
