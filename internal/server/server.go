package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/server/handler"
	"github.com/saurrx/priced/internal/server/middleware"
	"github.com/saurrx/priced/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// AdminKey / AdminKeyDigest guard /api/admin/*. When both are empty the
	// admin API is disabled.
	AdminKey       string
	AdminKeyDigest string

	// RateLimit is requests per client IP per RateWindow; zero disables.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates all HTTP handlers the server registers.
type Handlers struct {
	Health *handler.HealthHandler
	Match  *handler.MatchHandler
	Access *handler.AccessHandler // nil when no code store is configured
	Reload *handler.ReloadHandler
}

// Server is the HTTP + WebSocket API for the matching service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers all routes and middleware. codes gates the match
// endpoint when non-nil; limiter applies per-IP rate limiting when non-nil.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, codes domain.AccessCodeStore, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check: no auth, no rate limit.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Public matching API, gated by access codes where configured.
	gate := middleware.AccessCode(codes, logger)
	mux.Handle("POST /api/match", gate(http.HandlerFunc(handlers.Match.Match)))
	mux.HandleFunc("GET /api/markets/{id}", handlers.Match.GetMarket)
	mux.HandleFunc("GET /api/events/{id}/markets", handlers.Match.GetEventMarkets)

	if handlers.Access != nil {
		mux.HandleFunc("POST /api/access/validate", handlers.Access.ValidateCode)
	}

	// Admin API.
	admin := middleware.Admin(cfg.AdminKey, cfg.AdminKeyDigest)
	mux.Handle("POST /api/admin/reload", admin(http.HandlerFunc(handlers.Reload.Reload)))
	if handlers.Access != nil {
		mux.Handle("GET /api/admin/codes", admin(http.HandlerFunc(handlers.Access.ListCodes)))
		mux.Handle("POST /api/admin/codes", admin(http.HandlerFunc(handlers.Access.CreateCode)))
		mux.Handle("PATCH /api/admin/codes/{code}", admin(http.HandlerFunc(handlers.Access.UpdateCode)))
		mux.Handle("DELETE /api/admin/codes/{code}", admin(http.HandlerFunc(handlers.Access.DeleteCode)))
		mux.Handle("POST /api/admin/codes/{code}/reset", admin(http.HandlerFunc(handlers.Access.ResetCode)))
	}

	// Live match feed.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window == 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}
	h = middleware.Logging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening for HTTP requests and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware sets CORS headers for the allowed origins. With no origins
// configured, all origins are allowed.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if len(allowed) == 0 || allowed[origin] {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, X-Access-Code, X-Request-ID")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
