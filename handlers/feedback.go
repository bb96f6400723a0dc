package handlers

import (
	"errors"
	"net/http"

	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

type feedbackRequest struct {
	Type    models.FeedbackType `json:"type" validate:"omitempty,oneof=feedback complaint suggestion bug"`
	Subject string              `json:"subject" validate:"required"`
	Message string              `json:"message" validate:"required"`
}

type feedbackUpdate struct {
	Status     models.FeedbackStatus `json:"status" validate:"omitempty,oneof=pending reviewed resolved"`
	AdminNotes string                `json:"adminNotes"`
}

func feedbackErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Feedback not found")
	}
	return err
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req feedbackRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	f := &models.Feedback{UserID: userID, Type: req.Type, Subject: req.Subject, Message: req.Message}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Store.CreateFeedback(ctx, f); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Feedback submitted successfully",
		"feedback": f,
	})
}

func (h *Handler) MyFeedback(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.Store.FeedbackForUser(ctx, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AllFeedback lists submissions with their authors. ?status filters.
func (h *Handler) AllFeedback(w http.ResponseWriter, r *http.Request) {
	status := models.FeedbackStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.FeedbackPending, models.FeedbackReviewed, models.FeedbackResolved:
	default:
		h.fail(w, r, badRequest("Invalid status"))
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.Store.AllFeedback(ctx, status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req feedbackUpdate
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	f, err := h.Store.UpdateFeedback(ctx, id, req.Status, req.AdminNotes)
	if err != nil {
		h.fail(w, r, feedbackErr(err))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.Store.DeleteFeedback(ctx, id); err != nil {
		h.fail(w, r, feedbackErr(err))
		return
	}
	writeMessage(w, http.StatusOK, "Feedback deleted")
}
