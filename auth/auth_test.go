package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodiehub/ordering-api/config"
	"github.com/foodiehub/ordering-api/models"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	u := &models.User{ID: primitive.NewObjectID(), Name: "Ana", Role: models.RoleAdmin}

	tok, err := issuer.Issue(u)
	require.NoError(t, err)

	claims, err := issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "Ana", claims.Name)
}

func TestIssuer_Rejects(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}

	expired := NewIssuer("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(u)
	require.NoError(t, err)

	other, err := NewIssuer("different", time.Hour).Issue(u)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: u.ID.Hex(),
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: u.ID.Hex(), Role: models.RoleMaster}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: old},
		{name: "wrong secret", token: other},
		{name: "unknown role", token: badRole},
		{name: "unsigned", token: none},
		{name: "garbage", token: "a.b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

type fakeAccounts struct {
	byEmail map[string]*models.User
}

func (f *fakeAccounts) EnsureUser(_ context.Context, u *models.User) (bool, error) {
	if existing, ok := f.byEmail[u.Email]; ok {
		*u = *existing
		return false, nil
	}
	cp := *u
	f.byEmail[u.Email] = &cp
	return true, nil
}

func TestProvision(t *testing.T) {
	store := &fakeAccounts{byEmail: map[string]*models.User{
		"admin@example.com": {Email: "admin@example.com", Role: models.RoleAdmin, PasswordHash: "keep"},
	}}
	cfg := config.AuthConfig{
		MasterEmail:    "master@example.com",
		MasterPassword: "m4ster-pass",
		AdminEmail:     "admin@example.com",
		AdminPassword:  "new-pass",
	}

	err := Provision(context.Background(), store, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	master := store.byEmail["master@example.com"]
	require.NotNil(t, master)
	assert.Equal(t, models.RoleMaster, master.Role)
	assert.True(t, CheckPassword(master.PasswordHash, "m4ster-pass"))

	assert.Equal(t, "keep", store.byEmail["admin@example.com"].PasswordHash)
}

func TestProvisionSkipsUnconfigured(t *testing.T) {
	store := &fakeAccounts{byEmail: map[string]*models.User{}}
	err := Provision(context.Background(), store, config.AuthConfig{MasterEmail: "m@example.com"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Empty(t, store.byEmail)
}
