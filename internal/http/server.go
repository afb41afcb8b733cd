package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davidbz/markl/internal/config"
	"github.com/davidbz/markl/internal/http/middleware"
	"github.com/davidbz/markl/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      config.ServerConfig
	handler     *Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	return &Server{
		config:      *cfg,
		handler:     handler,
		middlewares: middlewares,
		srv:         nil,
	}
}

// Routes returns the routed handler wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	h := s.handler

	mux.HandleFunc("GET /health", h.HandleHealth)

	mux.HandleFunc("POST /api/ai/test", h.HandleTest)
	mux.HandleFunc("POST /api/ai/test-all", h.HandleTestAll)
	mux.HandleFunc("POST /api/ai/chat", h.HandleChat)
	mux.HandleFunc("POST /api/ai/models", h.HandleModels)
	mux.HandleFunc("POST /api/ai/enhance", h.HandleEnhance)
	mux.HandleFunc("POST /api/ai/refine", h.HandleRefine)
	mux.HandleFunc("POST /api/ai/estimate", h.HandleEstimate)
	mux.HandleFunc("POST /api/ai/compare", h.HandleCompare)
	mux.HandleFunc("POST /api/ai/apply", h.HandleApply)

	mux.HandleFunc("GET /api/ai/usage/stats", h.HandleUsageStats)
	mux.HandleFunc("GET /api/ai/usage/events", h.HandleUsageEvents)
	mux.HandleFunc("GET /api/ai/usage/cost", h.HandleCostMonitoring)
	mux.HandleFunc("PUT /api/ai/usage/cost-settings", h.HandleCostSettings)
	mux.HandleFunc("DELETE /api/ai/usage", h.HandleClearUsage)

	mux.HandleFunc("GET /api/ai/models-dev", h.HandleModelsDev)
	mux.HandleFunc("GET /api/ai/logos/{provider}", h.HandleLogo)

	mux.HandleFunc("/", h.HandleNotFound)

	if s.middlewares == nil {
		return mux
	}
	return s.middlewares(mux)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if s.srv == nil {
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
