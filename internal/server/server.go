package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/server/handler"
	"github.com/opavlenko/skinarb/internal/server/middleware"
	"github.com/opavlenko/skinarb/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIToken    string // if empty, authentication is disabled

	// Limiter enables per-client inbound rate limiting when non-nil.
	Limiter         domain.RateLimiter
	RateLimitPerMin int
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health      *handler.HealthHandler
	Markets     *handler.MarketHandler
	Arb         *handler.ArbHandler
	Investments *handler.InvestmentHandler
	Rates       *handler.RatesHandler
}

// Server is the HTTP + WebSocket API surface of the aggregator.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (auth, logging, CORS, rate limiting) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Legacy price endpoints kept at the root for existing consumers.
	mux.HandleFunc("GET /search", handlers.Markets.Search)
	mux.HandleFunc("GET /price", handlers.Markets.Price)
	mux.HandleFunc("GET /current_price", handlers.Markets.Price)
	mux.HandleFunc("GET /price_history", handlers.Markets.PriceHistory)

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Arbitrage scan endpoint.
	mux.HandleFunc("GET /api/arbitrage-opportunities", handlers.Arb.Opportunities)

	// Investment tracking endpoints.
	mux.HandleFunc("GET /api/investments", handlers.Investments.List)
	mux.HandleFunc("POST /api/investments", handlers.Investments.Create)
	mux.HandleFunc("GET /api/investments/{id}", handlers.Investments.Get)
	mux.HandleFunc("PUT /api/investments/{id}", handlers.Investments.Update)
	mux.HandleFunc("DELETE /api/investments/{id}", handlers.Investments.Delete)

	// Exchange rate endpoint.
	mux.HandleFunc("GET /api/rates", handlers.Rates.Rates)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIToken)(h)
	if cfg.Limiter != nil && cfg.RateLimitPerMin > 0 {
		h = middleware.RateLimit(cfg.Limiter, cfg.RateLimitPerMin, time.Minute)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
