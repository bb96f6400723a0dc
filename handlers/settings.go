package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

type hoursRequest struct {
	IsOpen        *bool   `json:"isOpen"`
	OpenTime      *string `json:"openTime" validate:"omitempty,datetime=15:04"`
	CloseTime     *string `json:"closeTime" validate:"omitempty,datetime=15:04"`
	LastOrderTime *string `json:"lastOrderTime" validate:"omitempty,datetime=15:04"`
}

type offerRequest struct {
	ImageURL *string `json:"imageUrl"`
	Headline *string `json:"headline"`
	Subtext  *string `json:"subtext"`
}

type deliveryPlatformsRequest struct {
	UberEatsURL *string `json:"ubereatsUrl"`
	MenulogURL  *string `json:"menulogUrl"`
	DoorDashURL *string `json:"doordashUrl"`
	IsEnabled   *bool   `json:"isEnabled"`
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (h *Handler) view(s *models.RestaurantSettings) models.SettingsView {
	return s.View(h.now().In(h.Config.App.Location()))
}

// GetSettings returns the restaurant profile with its open/accepting flags.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	s, err := h.Store.GetSettings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

// UpdateSettings merges the body into the stored settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	s, err := h.Store.GetSettings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := s.ID
	if err := h.decode(r, s); err != nil {
		h.fail(w, r, err)
		return
	}
	s.ID = id
	for i := range s.OpeningHours {
		s.OpeningHours[i].Day = strings.ToLower(s.OpeningHours[i].Day)
	}
	if err := h.Store.SaveSettings(ctx, s); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

// UpdateHours patches one weekday's opening window.
func (h *Handler) UpdateHours(w http.ResponseWriter, r *http.Request) {
	day := strings.ToLower(mux.Vars(r)["day"])
	var req hoursRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	s, err := h.Store.GetSettings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	idx := -1
	for i, oh := range s.OpeningHours {
		if oh.Day == day {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.fail(w, r, notFound("Day not found"))
		return
	}

	hours := s.OpeningHours[idx]
	setIf(&hours.IsOpen, req.IsOpen)
	setIf(&hours.OpenTime, req.OpenTime)
	setIf(&hours.CloseTime, req.CloseTime)
	setIf(&hours.LastOrderTime, req.LastOrderTime)

	updated, err := h.Store.SetOpeningHours(ctx, hours)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = notFound("Day not found")
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GetOffer returns the banner, or empty fields when none is set.
func (h *Handler) GetOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := h.Store.GetOffer(ctx)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]string{"imageUrl": "", "headline": "", "subtext": ""})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) SaveOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	o, err := h.Store.GetOffer(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		o = &models.Offer{}
	case err != nil:
		h.fail(w, r, err)
		return
	}
	setIf(&o.ImageURL, req.ImageURL)
	setIf(&o.Headline, req.Headline)
	setIf(&o.Subtext, req.Subtext)

	created, err := h.Store.SaveOffer(ctx, o)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, o)
}

func (h *Handler) GetDeliveryPlatforms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	dp, err := h.Store.GetDeliveryPlatforms(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dp)
}

func (h *Handler) SaveDeliveryPlatforms(w http.ResponseWriter, r *http.Request) {
	var req deliveryPlatformsRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	dp, err := h.Store.GetDeliveryPlatforms(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setIf(&dp.UberEatsURL, req.UberEatsURL)
	setIf(&dp.MenulogURL, req.MenulogURL)
	setIf(&dp.DoorDashURL, req.DoorDashURL)
	setIf(&dp.IsEnabled, req.IsEnabled)
	if err := h.Store.SaveDeliveryPlatforms(ctx, dp); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Delivery platform settings updated",
		"settings": dp,
	})
}
