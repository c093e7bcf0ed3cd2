package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"spendlog/internal/log"
)

type contextKey string

const ownerContextKey contextKey = "owner_id"

// Authenticator validates bearer tokens and stores the owner id on the
// request context.
type Authenticator struct {
	secret string
	logger *log.Logger
}

func NewAuthenticator(secret string, logger *log.Logger) *Authenticator {
	return &Authenticator{
		secret: secret,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			a.unauthorized(w, r, "Authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			a.unauthorized(w, r, "Authorization header must be a Bearer token")
			return
		}

		claims, err := ParseToken(a.secret, tokenString)
		if err != nil {
			a.logger.DebugContext(r.Context(), "token rejected",
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
			a.unauthorized(w, r, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// OwnerFromContext returns the authenticated owner id, if any.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerContextKey).(string)
	return owner, ok && owner != ""
}

// ContextWithOwner returns a context carrying the owner id. Used by tests
// and by handlers exercised outside the middleware.
func ContextWithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerContextKey, ownerID)
}
