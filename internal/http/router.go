package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/users"
)

// NewRouter wires application routes and middleware using chi. google may be
// nil when Google sign-in is not configured.
func NewRouter(cfg config.Config, authSvc *auth.Service, userSvc *users.Service, tokens *auth.TokenService, google *auth.GoogleAuthenticator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	authHandler := NewAuthHandler(authSvc, cfg.Environment, tokens.TTL(), logger)
	userHandler := NewUserHandler(userSvc, logger)

	var googleAuth googleAuthenticator
	if google != nil {
		googleAuth = google
	} else {
		logger.Warn("google sign-in disabled; GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set")
	}
	oauthHandler := NewOAuthHandler(googleAuth, authSvc, cfg.FrontendURL, cfg.Environment, tokens.TTL(), logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/google", oauthHandler.InitiateGoogle)
		r.Get("/google/callback", oauthHandler.CallbackGoogle)

		r.Group(func(r chi.Router) {
			r.Use(newAuthMiddleware(tokens))
			r.Get("/validate", authHandler.Validate)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(newOptionalAuthMiddleware(tokens))
			r.Post("/user", userHandler.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(newAuthMiddleware(tokens))
			r.Get("/", userHandler.List)
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
