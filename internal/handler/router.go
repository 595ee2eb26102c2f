package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meets/meets-go/internal/middleware"
	"github.com/meets/meets-go/internal/service"
	"github.com/meets/meets-go/internal/telemetry"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Auth        *service.AuthService
	Events      *service.EventService
	Reporter    *telemetry.Reporter
	JWTSecret   string
	CORSOrigins []string
	// AuthRPS and AuthBurst bound signup/login attempts per client IP.
	AuthRPS   float64
	AuthBurst int
}

// NewRouter builds the HTTP API. ctx bounds background work started by
// middleware (the rate limiter janitor).
func NewRouter(ctx context.Context, cfg RouterConfig) *chi.Mux {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Reporter)
	eventHandler := NewEventHandler(cfg.Events, cfg.Reporter)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cfg.Reporter.Middleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.AuthRPS, cfg.AuthBurst))
			r.Post("/auth/signup", authHandler.HandleSignup)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalJWTAuth(cfg.JWTSecret))
			r.Get("/meets", eventHandler.HandleListEvents)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/meets", eventHandler.HandleCreateEvent)
			r.Post("/meets/{event_id}/register", eventHandler.HandleRegister)
		})
	})

	return r
}
