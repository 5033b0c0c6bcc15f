// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/marketmind/internal/api/handler/api"
	"github.com/newthinker/marketmind/internal/api/middleware"
	"github.com/newthinker/marketmind/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for MarketMind.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	CORSOrigins []string
	MetricsPath string
	Version     string
}

// App is what the HTTP layer needs from the application.
type App interface {
	handler.Analyzer
	handler.HistoryReader
	handler.ArchiveReader
	handler.StatsSource
}

// Dependencies holds the components the routes are served from.
type Dependencies struct {
	App     App
	Router  handler.StatsSource // optional
	Metrics *metrics.Registry   // optional
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("app dependency is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger: logger.Named("http"),
		mux:    http.NewServeMux(),
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = s.mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	h = metrics.LoggingMiddleware(s.logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)

	analyze := handler.NewAnalyzeHandler(deps.App)
	history := handler.NewHistoryHandler(deps.App)
	archive := handler.NewArchiveHandler(deps.App)
	stats := map[string]handler.StatsSource{"watcher": deps.App}
	if deps.Router != nil {
		stats["alerts"] = deps.Router
	}
	health := handler.NewHealthHandler(cfg.Version, stats)

	s.mux.Handle("GET /api/analyze/{ticker}", auth(http.HandlerFunc(analyze.Get)))
	s.mux.Handle("GET /api/history/{ticker}", auth(http.HandlerFunc(history.List)))
	s.mux.Handle("GET /api/history/{ticker}/{id}", auth(http.HandlerFunc(history.Get)))
	s.mux.Handle("GET /api/archive/{ticker}", auth(http.HandlerFunc(archive.List)))
	s.mux.HandleFunc("GET /api/health", health.Get)

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
