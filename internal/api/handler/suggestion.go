package handler

import (
	"encoding/json"
	"net/http"

	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
)

// SuggestionHandler stages and resolves rubric status suggestions.
type SuggestionHandler struct {
	store   *session.Store
	metrics *metrics.Metrics
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(store *session.Store, m *metrics.Metrics) *SuggestionHandler {
	return &SuggestionHandler{store: store, metrics: m}
}

// Propose stages a suggestion, replacing any unresolved prior one.
func (h *SuggestionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}

	var req struct {
		SkillID   string `json:"skill_id" validate:"required"`
		Status    string `json:"status" validate:"required,oneof=met not_met"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.store.ProposeSuggestion(req.SkillID, domain.RubricStatus(req.Status), req.Reasoning); err != nil {
		writeStoreError(w, err)
		return
	}

	response.OK(w, h.store.State().Suggestion)
}

// Accept applies the pending suggestion.
func (h *SuggestionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}
	if err := h.store.AcceptSuggestion(); err != nil {
		writeStoreError(w, err)
		return
	}
	h.metrics.SuggestionsResolved.WithLabelValues("accepted").Inc()
	response.OK(w, h.store.State())
}

// Reject discards the pending suggestion.
func (h *SuggestionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}
	if err := h.store.RejectSuggestion(); err != nil {
		writeStoreError(w, err)
		return
	}
	h.metrics.SuggestionsResolved.WithLabelValues("rejected").Inc()
	response.OK(w, h.store.State())
}
