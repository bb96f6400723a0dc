package handlers

import (
	"errors"
	"net/http"

	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

type deliveryPlatformRequest struct {
	DeliveryPlatform string `json:"deliveryPlatform"`
}

// MyOrders returns the caller's order history, newest first.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	orders, err := h.Store.OrdersForUser(ctx, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// SetDeliveryPlatform changes the fulfillment method of one of the caller's orders.
func (h *Handler) SetDeliveryPlatform(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req deliveryPlatformRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	platform, err := models.ParseDeliveryPlatform(req.DeliveryPlatform)
	if err != nil {
		h.fail(w, r, badRequest("Invalid shipping method"))
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := h.Store.SetDeliveryPlatform(ctx, orderID, userID, platform)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = notFound("Order not found")
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Delivery platform updated",
		"order":            o,
		"deliveryPlatform": o.DeliveryPlatform,
	})
}
