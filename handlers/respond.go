package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodiehub/ordering-api/checkout"
	"github.com/foodiehub/ordering-api/loyalty"
	"github.com/foodiehub/ordering-api/middleware"
	"github.com/foodiehub/ordering-api/payment"
	"github.com/foodiehub/ordering-api/store"
)

// httpError carries a status and a client-facing message.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &httpError{status: http.StatusNotFound, msg: msg}
}

func conflict(msg string) error {
	return &httpError{status: http.StatusConflict, msg: msg}
}

func unauthorized(msg string) error {
	return &httpError{status: http.StatusUnauthorized, msg: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// statusOf maps domain errors onto HTTP statuses. Unknown errors are 500.
func statusOf(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, checkout.ErrNoItems),
		errors.Is(err, checkout.ErrInvalidProduct),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrMissingIntent),
		errors.Is(err, checkout.ErrPaymentNotSucceeded),
		errors.Is(err, checkout.ErrBelowMinimumCharge),
		errors.Is(err, checkout.ErrUnderpaid),
		errors.Is(err, loyalty.ErrDealExpired),
		errors.Is(err, loyalty.ErrMaxUsesReached),
		errors.Is(err, loyalty.ErrInsufficientPoints):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrIntentOwner):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, checkout.ErrUserNotFound),
		errors.Is(err, loyalty.ErrDealNotFound),
		errors.Is(err, loyalty.ErrUserNotFound),
		errors.Is(err, payment.ErrIntentNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, checkout.ErrAlreadyConfirmed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"message": ...}. Server errors are logged and their cause hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		msg := "Server error"
		if errors.Is(err, payment.ErrNotConfigured) {
			msg = "Payment processing is not configured"
		}
		writeMessage(w, status, msg)
		return
	}
	msg := err.Error()
	if errors.Is(err, store.ErrDuplicate) {
		msg = "Already exists"
	}
	writeMessage(w, status, capitalize(msg))
}

// capitalize upper-cases the first letter of a lower-case Go error string for display.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates its struct tags.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("Invalid request body: %v", err)
	}
	return h.check(dst)
}

func (h *Handler) check(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("Invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return badRequest("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "datetime":
		return field + " must be HH:MM"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// fieldPath drops the request type and any embedded struct names from a
// validator namespace, leaving the JSON path.
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	keep := parts[:0]
	for _, p := range parts[1:] {
		if p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		keep = append(keep, p)
	}
	return strings.Join(keep, ".")
}

// pathID parses the named route variable as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, badRequest("Invalid %s", name)
	}
	return id, nil
}

// caller returns the authenticated user's id.
func caller(r *http.Request) (primitive.ObjectID, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, unauthorized("No token provided")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, unauthorized("Invalid token")
	}
	return id, nil
}
