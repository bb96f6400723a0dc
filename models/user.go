package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleMaster   Role = "master"
)

// ParseRole accepts only the known roles.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMaster:
		return RoleMaster, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Staff reports whether the role may use the back-office.
func (r Role) Staff() bool {
	switch r {
	case RoleAdmin, RoleMaster:
		return true
	case RoleCustomer:
		return false
	default:
		return false
	}
}

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Role         Role               `json:"role" bson:"role"`
	Points       int64              `json:"points" bson:"points"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PublicUser is the shape returned to clients after signin/signup.
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Points int64  `json:"points"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID.Hex(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Points: u.Points,
	}
}
