package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/foodiehub/ordering-api/auth"
	"github.com/foodiehub/ordering-api/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenParser verifies a raw token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// WithClaims stores the caller identity on ctx.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the identity set by Authenticate, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// tokenFrom looks at the Authorization header, then the token header and
// cookie. Browsers cannot set headers on websocket upgrades, so those may
// pass the token as a query parameter.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if t := r.Header.Get("token"); t != "" {
		return t
	}
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

// Authenticate rejects requests without a valid token and stores the claims on the request context.
func Authenticate(p TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFrom(r)
			if raw == "" {
				writeMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}
			claims, err := p.Parse(raw)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			r.Header.Set("X-User-ID", claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole lets through callers whose role is one of roles. It must run after Authenticate.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				writeMessage(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
