// Package router sets up all HTTP routes and middleware chains for the
// DIYHub API. Routes are organized into public reads (optional auth, so
// per-viewer flags can be filled when a token is present) and
// authenticated writes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"diyhub/internal/auth"
	"diyhub/internal/handlers"
	"diyhub/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter guards the credential endpoints and
// may be nil to disable rate limiting.
func New(tokens *auth.Tokens, users middleware.UserFinder, authH *handlers.Auth, projects *handlers.Projects, limiter *middleware.RateLimiter, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := middleware.RequireAuth(tokens, users)
	optionalAuth := middleware.OptionalAuth(tokens, users)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Credential endpoints — rate-limited to slow down guessing.
	r.Route("/auth", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)
	})

	r.Route("/projects", func(r chi.Router) {
		// Public reads. Optional auth fills isLiked/isSaved/isAuthor.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", projects.List)
			r.Get("/category/{category}", projects.ByCategory)
			r.Get("/featured/list", projects.Featured)
			r.Get("/stats/overview", projects.Stats)
			r.Get("/categories/list", projects.Categories)
			r.Get("/{id}", projects.Get)
		})

		// Authenticated writes.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", projects.Create)
			r.Get("/saved/list", projects.SavedList)
			r.Put("/{id}", projects.Update)
			r.Delete("/{id}", projects.Delete)
			r.Post("/{id}/like", projects.ToggleLike)
			r.Post("/{id}/save", projects.ToggleSave)
			r.Post("/{id}/comments", projects.AddComment)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
