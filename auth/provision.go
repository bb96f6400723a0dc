package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foodiehub/ordering-api/config"
	"github.com/foodiehub/ordering-api/models"
)

// AccountStore creates a user unless the email is already registered.
type AccountStore interface {
	EnsureUser(ctx context.Context, u *models.User) (created bool, err error)
}

type account struct {
	name     string
	email    string
	password string
	role     models.Role
}

// Provision creates the configured master and admin accounts on first start.
// Existing accounts are left untouched.
func Provision(ctx context.Context, store AccountStore, cfg config.AuthConfig, logger *slog.Logger) error {
	accounts := []account{
		{name: "Master Admin", email: cfg.MasterEmail, password: cfg.MasterPassword, role: models.RoleMaster},
		{name: "Store Admin", email: cfg.AdminEmail, password: cfg.AdminPassword, role: models.RoleAdmin},
	}
	for _, a := range accounts {
		if a.email == "" || a.password == "" {
			continue
		}
		hash, err := HashPassword(a.password)
		if err != nil {
			return fmt.Errorf("hash %s password: %w", a.role, err)
		}
		u := &models.User{Name: a.name, Email: a.email, PasswordHash: hash, Role: a.role}
		created, err := store.EnsureUser(ctx, u)
		if err != nil {
			return fmt.Errorf("provision %s account: %w", a.role, err)
		}
		switch {
		case created:
			logger.Info("provisioned account", "role", a.role, "email", u.Email)
		case u.Role != a.role:
			logger.Warn("configured account exists with a different role", "email", u.Email, "role", u.Role, "want", a.role)
		}
	}
	return nil
}
