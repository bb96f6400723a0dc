package handlers

import (
	"errors"
	"net/http"

	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

func dealErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Deal not found")
	}
	return err
}

func (h *Handler) ListDeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	deals, err := h.Store.ListActiveDeals(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

// MyDeals lists the caller's active, unexpired vouchers.
func (h *Handler) MyDeals(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	deals, err := h.Loyalty.ListActive(ctx, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

func (h *Handler) RedeemDeal(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dealID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	red, err := h.Loyalty.Redeem(ctx, userID, dealID)
	dealRedemptions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if red.UserDeal.Deal != nil {
		h.Instruments.DealRedeemed(ctx, red.UserDeal.Deal.PointsCost)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Deal redeemed successfully!",
		"userDeal":        red.UserDeal,
		"pointsRemaining": red.RemainingPoints,
	})
}

func (h *Handler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	d := models.Deal{DiscountType: models.DiscountPercentage, MaxUses: 1}
	if err := h.decode(r, &d); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := d.Validate(); err != nil {
		h.fail(w, r, badRequest("%s", capitalize(err.Error())))
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Store.CreateDeal(ctx, &d); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	d, err := h.Store.DealByID(ctx, id)
	if err != nil {
		h.fail(w, r, dealErr(err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) UpdateDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	d, err := h.Store.DealByID(ctx, id)
	if err != nil {
		h.fail(w, r, dealErr(err))
		return
	}
	created := d.CreatedAt
	if err := h.decode(r, d); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := d.Validate(); err != nil {
		h.fail(w, r, badRequest("%s", capitalize(err.Error())))
		return
	}
	d.ID, d.CreatedAt = id, created
	if err := h.Store.ReplaceDeal(ctx, d); err != nil {
		h.fail(w, r, dealErr(err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Store.DeactivateDeal(ctx, id); err != nil {
		h.fail(w, r, dealErr(err))
		return
	}
	writeMessage(w, http.StatusOK, "Deal deactivated")
}
