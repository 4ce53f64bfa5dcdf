// Package server exposes the multiplication engine over HTTP.
//
// Routes:
//
//	GET /multiply?x=..&y=..[&algo=..]  JSON product of x and y
//	GET /health                        liveness and host load
//	GET /metrics                       Prometheus exposition
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/logging"
	"github.com/agbru/karacalc/internal/metrics"
)

const (
	// DefaultRequestTimeout bounds one /multiply calculation.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultShutdownTimeout bounds the graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

var tracer = otel.Tracer("github.com/agbru/karacalc/internal/server")

// Config configures the HTTP service.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// DefaultAlgo serves requests without an algo parameter.
	DefaultAlgo string
	// Options are passed to every calculation.
	Options         karatsuba.Options
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Security        SecurityConfig
}

// DefaultConfig returns a configuration listening on addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:            addr,
		DefaultAlgo:     "karatsuba",
		RequestTimeout:  DefaultRequestTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		Security:        DefaultSecurityConfig(),
	}
}

// Server is the karacalc HTTP service.
type Server struct {
	cfg     Config
	factory karatsuba.CalculatorFactory
	metrics *metrics.Metrics
	logger  logging.Logger
	router  chi.Router
	started time.Time

	shuttingDown atomic.Bool
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger replaces the default zerolog logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics makes the server record into m instead of a fresh registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer builds a server running the calculators of factory. Zero
// values in cfg are replaced by their defaults.
func NewServer(factory karatsuba.CalculatorFactory, cfg Config, opts ...Option) *Server {
	def := DefaultConfig(cfg.Addr)
	if cfg.DefaultAlgo == "" {
		cfg.DefaultAlgo = def.DefaultAlgo
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if !cfg.Security.EnableCORS && len(cfg.Security.AllowedOrigins) == 0 && len(cfg.Security.AllowedMethods) == 0 {
		maxDigits := cfg.Security.MaxDigits
		cfg.Security = def.Security
		if maxDigits > 0 {
			cfg.Security.MaxDigits = maxDigits
		}
	}
	if cfg.Security.MaxDigits <= 0 {
		cfg.Security.MaxDigits = DefaultMaxDigits
	}

	s := &Server{
		cfg:     cfg,
		factory: factory,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewDefaultLogger()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewMetrics()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(adapt(requestID))
	r.Use(adapt(s.metricsMiddleware))
	r.Use(func(next http.Handler) http.Handler {
		return SecurityMiddleware(s.cfg.Security, next.ServeHTTP)
	})

	r.Get("/multiply", s.handleMultiply)
	r.Get("/health", s.handleHealth)
	r.HandleFunc("/metrics", s.handleMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully,
// letting in-flight requests finish within the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening",
			logging.String("addr", s.cfg.Addr),
			logging.String("default_algo", s.cfg.DefaultAlgo),
			logging.Int("max_digits", s.cfg.Security.MaxDigits))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.shuttingDown.Store(true)
	s.logger.Info("shutdown requested, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
