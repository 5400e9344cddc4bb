// Package server exposes the git smart-HTTP endpoints behind the access
// gate, plus the operational endpoints (/healthz, /metrics).
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/avgitgw/internal/authz"
	"github.com/vyrodovalexey/avgitgw/internal/config"
	"github.com/vyrodovalexey/avgitgw/internal/health"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/protocol"
	"github.com/vyrodovalexey/avgitgw/internal/signature"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions.
var ginModeOnce sync.Once

// Server is the gateway HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     *config.ServerConfig
	logger     observability.Logger
	access     *authz.Access
	repos      store.RepositoryStore
	protocol   protocol.Handler
	attributor *signature.Disambiguator
	checker    *health.Checker
	registry   *prometheus.Registry

	mu      sync.RWMutex
	running bool
}

// Option is a functional option for the server.
type Option func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(logger observability.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProtocolHandler sets the pack negotiation backend.
func WithProtocolHandler(h protocol.Handler) Option {
	return func(s *Server) {
		if h != nil {
			s.protocol = h
		}
	}
}

// WithDisambiguator enables the commit attribution endpoint.
func WithDisambiguator(d *signature.Disambiguator) Option {
	return func(s *Server) {
		s.attributor = d
	}
}

// WithHealthChecker serves /healthz and /readyz from the given checker.
func WithHealthChecker(checker *health.Checker) Option {
	return func(s *Server) {
		s.checker = checker
	}
}

// WithMetricsRegistry serves /metrics from the given registry instead of
// the default one.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// New creates the gateway server and registers its routes.
func New(cfg *config.ServerConfig, access *authz.Access, repos store.RepositoryStore, opts ...Option) *Server {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	s := &Server{
		engine:   gin.New(),
		config:   cfg,
		logger:   observability.NopLogger(),
		access:   access,
		repos:    repos,
		protocol: protocol.Unimplemented{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.engine.Use(
		RequestID(),
		Recovery(s.logger),
		Logging(s.logger, "/healthz", "/readyz", "/metrics"),
	)

	s.registerRoutes()

	return s
}

// Engine returns the underlying gin engine, used by tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	if s.checker != nil {
		s.engine.GET("/healthz", gin.WrapF(s.checker.HealthHandler()))
		s.engine.GET("/readyz", gin.WrapF(s.checker.ReadinessHandler()))
	} else {
		s.engine.GET("/healthz", s.handleHealthz)
	}
	s.engine.GET("/metrics", s.metricsHandler())

	if s.attributor != nil {
		s.engine.GET("/api/attribution", s.handleAttribution)
	}

	repo := s.engine.Group("/:owner/:name")
	repo.GET("/info/refs", s.handleInfoRefs)
	repo.POST("/git-upload-pack", s.handleUploadPack)
	repo.POST("/git-receive-pack", s.handleReceivePack)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) metricsHandler() gin.HandlerFunc {
	handler := promhttp.Handler()
	if s.registry != nil {
		handler = promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	}
	return gin.WrapH(handler)
}

// Start runs the HTTP server until it is stopped or fails.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout.Duration(),
		WriteTimeout:   s.config.WriteTimeout.Duration(),
		IdleTimeout:    s.config.IdleTimeout.Duration(),
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
