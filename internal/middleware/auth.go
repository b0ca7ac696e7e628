package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"diyhub/internal/auth"
	"diyhub/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// userKey is the context key for the authenticated user.
const userKey contextKey = "user"

// UserFinder resolves a user id from a verified token to the full record.
// *store.UserStore satisfies it.
type UserFinder interface {
	FindByID(id uuid.UUID) (*models.User, error)
}

const bearerPrefix = "Bearer "

// unauthorized writes the standard 401 response.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"` + message + `"}`))
}

// resolveUser verifies the bearer token and loads the user it binds.
// Returns (nil, false) when no token is present, and writes a 401 and
// returns (nil, true) when a token is present but unusable.
func resolveUser(w http.ResponseWriter, r *http.Request, tokens *auth.Tokens, users UserFinder) (*models.User, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, false
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		unauthorized(w, "Invalid authorization header")
		return nil, true
	}

	userID, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		unauthorized(w, "Invalid or expired token")
		return nil, true
	}

	user, err := users.FindByID(userID)
	if err != nil || user == nil {
		unauthorized(w, "Invalid or expired token")
		return nil, true
	}
	return user, false
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user in the request context for downstream handlers.
func RequireAuth(tokens *auth.Tokens, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, handled := resolveUser(w, r, tokens, users)
			if handled {
				return
			}
			if user == nil {
				unauthorized(w, "Authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth loads the user when a valid token is present, and lets the
// request through unauthenticated when there is no token at all. A token
// that is present but invalid still fails with 401.
func OptionalAuth(tokens *auth.Tokens, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, handled := resolveUser(w, r, tokens, users)
			if handled {
				return
			}

			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil if the request is unauthenticated.
func UserFromCtx(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
