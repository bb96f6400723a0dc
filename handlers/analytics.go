package handlers

import (
	"net/http"
)

// DailySales groups the last seven days of orders by the restaurant's calendar day.
func (h *Handler) DailySales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	rows, err := h.Store.DailySales(ctx, h.Config.App.Location())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) WeeklySales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	rows, err := h.Store.WeeklySales(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) WeeklyRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	rows, err := h.Store.WeeklyRevenue(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// CustomerPurchases lists every customer with their orders, biggest spenders first.
func (h *Handler) CustomerPurchases(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "CustomerPurchases")
	defer span.End()

	ctx, cancel := h.ctxFrom(ctx)
	defer cancel()
	rows, err := h.Store.CustomerPurchases(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// MasterProduct returns the raw product document for the editing form.
func (h *Handler) MasterProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.Store.ProductByID(ctx, id)
	if err != nil {
		h.fail(w, r, productErr(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
