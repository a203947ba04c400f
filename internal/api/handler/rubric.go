package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/session"
)

// RubricHandler edits checklist item statuses.
type RubricHandler struct {
	store *session.Store
}

// NewRubricHandler creates a new rubric handler
func NewRubricHandler(store *session.Store) *RubricHandler {
	return &RubricHandler{store: store}
}

// SetStatus overwrites one rubric item's status.
func (h *RubricHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		response.BadRequest(w, "missing rubric item ID")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=pending met not_met"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.store.SetRubricStatus(itemID, domain.RubricStatus(req.Status)); err != nil {
		writeStoreError(w, err)
		return
	}

	response.OK(w, h.store.State().Rubric)
}
