package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/foodiehub/ordering-api/checkout"
	"github.com/foodiehub/ordering-api/models"
)

// paymentTimeout covers a gateway round trip on top of the store calls.
const paymentTimeout = 30 * time.Second

type createIntentRequest struct {
	Items          []models.CartItem `json:"items" validate:"dive"`
	PointsToRedeem float64           `json:"pointsToRedeem"`
}

type confirmRequest struct {
	PaymentIntentID string            `json:"paymentIntentId"`
	Items           []models.CartItem `json:"items" validate:"dive"`
}

func (h *Handler) paymentCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), max(h.timeout, paymentTimeout))
}

func (h *Handler) checkoutErr(err error) error {
	if errors.Is(err, checkout.ErrBelowMinimumCharge) {
		return badRequest("Payment amount must be at least $%.2f %s. Please reduce points redemption.",
			h.Config.Loyalty.MinCharge, h.Config.Stripe.Currency)
	}
	return err
}

// CreatePaymentIntent prices the cart, applies the requested points and opens
// a gateway intent for the remainder.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req createIntentRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	points := int64(math.Max(0, math.Floor(req.PointsToRedeem)))

	ctx, cancel := h.paymentCtx(r)
	defer cancel()
	res, err := h.Checkout.CreateIntent(ctx, userID, req.Items, points)
	checkoutIntents.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		h.fail(w, r, h.checkoutErr(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ConfirmPayment records the order for a succeeded intent and settles points.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ConfirmPayment")
	defer span.End()

	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req confirmRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("payment.intent", req.PaymentIntentID))

	ctx, cancel := context.WithTimeout(ctx, max(h.timeout, paymentTimeout))
	defer cancel()
	conf, err := h.Checkout.Confirm(ctx, userID, req.PaymentIntentID, req.Items)
	checkoutConfirmations.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		h.fail(w, r, h.checkoutErr(err))
		return
	}
	pointsAwarded.Add(float64(conf.PointsEarned))
	h.Instruments.OrderConfirmed(ctx, conf.Order.Total, conf.PointsSpent)
	writeJSON(w, http.StatusOK, conf)
}

// StripeKey exposes what the storefront needs to render checkout.
func (h *Handler) StripeKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"publishableKey": h.Config.Stripe.PublishableKey,
		"pointValue":     h.Config.Loyalty.PointValue,
		"minCharge":      h.Config.Loyalty.MinCharge,
		"currency":       h.Config.Stripe.Currency,
	})
}
