package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodiehub/ordering-api/auth"
	"github.com/foodiehub/ordering-api/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := ClaimsFromContext(r.Context()); ok {
			_, _ = io.WriteString(w, string(c.Role))
			return
		}
		_, _ = io.WriteString(w, "ok")
	})
}

func issue(t *testing.T, issuer *auth.Issuer, role models.Role) string {
	t.Helper()
	tok, err := issuer.Issue(&models.User{ID: primitive.NewObjectID(), Name: "x", Role: role})
	require.NoError(t, err)
	return tok
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	customer := issue(t, issuer, models.RoleCustomer)
	admin := issue(t, issuer, models.RoleAdmin)

	chain := Authenticate(issuer)(RequireRole(models.RoleAdmin, models.RoleMaster)(okHandler()))

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no token",
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "No token provided",
		},
		{
			name:       "garbage token",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid token",
		},
		{
			name:       "wrong role",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+customer) },
			wantStatus: http.StatusForbidden,
			wantBody:   "Access denied",
		},
		{
			name:       "bearer header",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) },
			wantStatus: http.StatusOK,
			wantBody:   "admin",
		},
		{
			name:       "cookie",
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: admin}) },
			wantStatus: http.StatusOK,
			wantBody:   "admin",
		},
		{
			name:       "query param ignored outside websocket upgrade",
			prepare:    func(r *http.Request) { r.URL.RawQuery = "token=" + admin },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "No token provided",
		},
		{
			name: "query param on websocket upgrade",
			prepare: func(r *http.Request) {
				r.URL.RawQuery = "token=" + admin
				r.Header.Set("Connection", "Upgrade")
				r.Header.Set("Upgrade", "websocket")
			},
			wantStatus: http.StatusOK,
			wantBody:   "admin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/analytics/daily-sales", nil)
			tt.prepare(r)
			w := httptest.NewRecorder()

			chain.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{name: "get passes through", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "json with charset", method: http.MethodPost, contentType: "application/json; charset=utf-8", body: `{"a":1}`, wantStatus: http.StatusOK},
		{name: "form body", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", body: "a=1", wantStatus: http.StatusUnsupportedMediaType},
		{name: "empty body", method: http.MethodPut, contentType: "application/json", body: "  ", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := ValidateJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seen = string(b)
			}))
			r := httptest.NewRequest(tt.method, "/api/products", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK && tt.method != http.MethodGet {
				assert.Equal(t, tt.body, seen)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Middleware(okHandler())

	do := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		r.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))

	now = now.Add(time.Hour)
	rl.sweep(time.Minute)
	assert.Empty(t, rl.visitors)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}
