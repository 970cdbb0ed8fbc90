package delivery

import (
	"net/http"

	"github.com/Vovarama1992/mediavault/internal/config"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	Auth      *AuthHandler
	Media     *MediaHandler
	Views     http.HandlerFunc // live view feed, optional
	Metrics   http.Handler     // optional
	AuthSvc   ports.AuthService
	RateLimit config.RateLimitConfig
}

func RegisterRoutes(r chi.Router, h Handlers) {
	r.Use(RateLimit(h.RateLimit, h.RateLimit.General, "Too many requests from this IP, please try again later."))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// auth
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(h.RateLimit, h.RateLimit.Auth, "Too many authentication attempts, please try again later."))
		r.Post("/auth/signup", h.Auth.Signup)
		r.Post("/auth/login", h.Auth.Login)
	})

	// public, gated by the signed url
	r.Get("/media/stream/{id}", h.Media.Stream)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.AuthSvc))

		r.With(RateLimit(h.RateLimit, h.RateLimit.Upload, "Too many uploads, please try again later.")).
			Post("/media", h.Media.Upload)
		r.Get("/media/{id}", h.Media.Get)
		r.Get("/media/{id}/stream-url", h.Media.StreamURL)
		r.Get("/media/{id}/views", h.Media.LogView)
		r.Get("/media/{id}/analytics", h.Media.Analytics)
	})

	if h.Views != nil {
		r.Get("/ws/views", h.Views)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
	})
}
