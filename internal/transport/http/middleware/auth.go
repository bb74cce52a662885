package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/learnza/learnza-api/internal/domain"
	jwtinfra "github.com/learnza/learnza-api/internal/infrastructure/jwt"
)

type contextKey string

const userKey contextKey = "user"

// UserLoader resolves the token subject to a user record.
type UserLoader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Auth validates the Bearer token and loads the referenced user into the
// request context. Both a bad token and a missing user yield 401 — an
// unauthenticated caller must never learn anything past this point.
func Auth(provider *jwtinfra.Provider, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified rejects callers whose email is not verified. Must be
// mounted after Auth: authentication always precedes verification gating, so
// an unauthenticated caller sees 401, never 403.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !u.Verified() {
			writeJSONError(w, http.StatusForbidden, "please verify your email address to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}
