// Package router assembles the HTTP surface: widget endpoints, booking,
// diagnostics, and operational routes.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/247convo/convo-backend/internal/http/handlers"
	httpmiddleware "github.com/247convo/convo-backend/internal/http/middleware"
	"github.com/247convo/convo-backend/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	ChatHandler    *handlers.ChatHandler
	BookingHandler *handlers.BookingHandler
	ConvlogHandler *handlers.ConvlogHandler
	ConfigHandler  *handlers.ConfigHandler
	AdminHandler   *handlers.AdminHandler

	AdminAuthSecret    string
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler

	// Chat rate limit, sliding window per IP.
	RateLimit     int
	RatePeriod    time.Duration
	OnRateLimited func()
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Widget endpoints.
	if cfg.ChatHandler != nil {
		limit, period := cfg.RateLimit, cfg.RatePeriod
		if limit <= 0 {
			limit = 30
		}
		if period <= 0 {
			period = time.Minute
		}
		r.With(httpmiddleware.RateLimit(limit, period, cfg.OnRateLimited)).
			Post("/chat", cfg.ChatHandler.Handle)
	}
	if cfg.BookingHandler != nil {
		r.Post("/book", cfg.BookingHandler.Book)
		r.Get("/availability/{clientID}", cfg.BookingHandler.Availability)
		r.Get("/availability/{clientID}/busy", cfg.BookingHandler.Busy)
	}
	if cfg.ConvlogHandler != nil {
		r.Post("/summary", cfg.ConvlogHandler.Summary)
		r.Post("/rating", cfg.ConvlogHandler.Rating)
	}
	if cfg.ConfigHandler != nil {
		r.Get("/configs/{clientID}.json", cfg.ConfigHandler.Get)
	}

	// Admin diagnostics.
	if cfg.AdminHandler != nil {
		r.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/status/{clientID}", cfg.AdminHandler.Status)
			admin.Get("/debug/env", cfg.AdminHandler.Env)
		})
	}

	return r
}
