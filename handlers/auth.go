package handlers

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/foodiehub/ordering-api/auth"
	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

var tracer = otel.Tracer("github.com/foodiehub/ordering-api/handlers")

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Signup registers a customer. Staff accounts are never created here.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Signup")
	defer span.End()

	var req signupRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u := &models.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: models.RoleCustomer}

	ctx, cancel := h.ctxFrom(ctx)
	defer cancel()
	if err := h.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = conflict("Email already registered")
		}
		h.fail(w, r, err)
		return
	}
	h.session(w, r, http.StatusCreated, u)
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Signin")
	defer span.End()

	var req credentials
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctxFrom(ctx)
	defer cancel()
	u, err := h.Store.UserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(w, r, unauthorized("Invalid credentials"))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.fail(w, r, unauthorized("Invalid credentials"))
		return
	}
	h.session(w, r, http.StatusOK, u)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, status int, u *models.User) {
	token, err := h.Tokens.Issue(u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, User: u.Public()})
}

// Me returns the caller's profile with the current points balance.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.Store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = notFound("User not found")
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}
