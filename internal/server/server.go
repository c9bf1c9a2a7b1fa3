// Package server assembles the campaigndesk HTTP API: operational
// endpoints, the middleware chain, and the routes contributed by the
// feature packages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/HerbHall/campaigndesk/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// ReadinessChecker reports whether dependencies can serve traffic.
type ReadinessChecker func(ctx context.Context) error

// RouteRegistrar registers routes and supplies a middleware wrapping the
// whole API. The auth package implements it.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
	Middleware() func(http.Handler) http.Handler
}

// SimpleRouteRegistrar registers routes only.
type SimpleRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// readyTimeout bounds one readiness check, which may call the generation
// service.
const readyTimeout = 5 * time.Second

// Server is the campaigndesk HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	ready      ReadinessChecker
	readOnly   bool
}

// Health and scrape paths, excluded from request logs and rate limits.
var operationalPaths = []string{"/healthz", "/readyz", "/metrics"}

// New builds the server. auth may be nil to run without authentication.
// DevMode mounts Swagger UI at /swagger/; ReadOnly rejects requests that
// would change stored data. Zero timeouts and rates take the defaults.
func New(cfg Config, logger *zap.Logger, ready ReadinessChecker, auth RouteRegistrar, extraRoutes ...SimpleRouteRegistrar) *Server {
	def := DefaultConfig()
	s := &Server{
		logger:   logger,
		mux:      http.NewServeMux(),
		ready:    ready,
		readOnly: cfg.ReadOnly,
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if auth != nil {
		auth.RegisterRoutes(s.mux)
	}
	for _, r := range extraRoutes {
		r.RegisterRoutes(s.mux)
	}
	if cfg.DevMode {
		s.mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
		logger.Info("swagger UI enabled (dev_mode)", zap.String("path", "/swagger/"))
	}

	rps, burst := cfg.RateLimit, cfg.RateBurst
	if rps <= 0 {
		rps, burst = def.RateLimit, def.RateBurst
	}

	chain := []Middleware{
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger, operationalPaths),
		SecurityHeadersMiddleware,
		VersionHeaderMiddleware,
		RateLimitMiddleware(rps, burst, operationalPaths),
	}
	if cfg.ReadOnly {
		chain = append(chain, ReadOnlyMiddleware)
		logger.Info("read-only mode enabled")
	}
	if auth != nil {
		chain = append(chain, auth.Middleware())
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           Chain(recordRoute(s.mux), chain...),
		ReadTimeout:       orDefault(cfg.ReadTimeout, def.ReadTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      orDefault(cfg.WriteTimeout, def.WriteTimeout),
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// ReadyResponse is the body of GET /readyz.
type ReadyResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleHealthz is the liveness check.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadyz runs the readiness checker with a bounded context.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not ready", Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status   string            `json:"status" example:"ok"`
	Service  string            `json:"service" example:"campaigndesk"`
	ReadOnly bool              `json:"read_only"`
	Version  map[string]string `json:"version"`
}

// handleHealth returns service status and build information.
//
//	@Summary		Health check
//	@Description	Returns service health status with version information.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Service:  "campaigndesk",
		ReadOnly: s.readOnly,
		Version:  version.Map(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
