package handler

import (
	"encoding/json"
	"net/http"

	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
)

// TranscriptHandler appends conversation entries.
type TranscriptHandler struct {
	store   *session.Store
	metrics *metrics.Metrics
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(store *session.Store, m *metrics.Metrics) *TranscriptHandler {
	return &TranscriptHandler{store: store, metrics: m}
}

// Append adds one entry to the transcript. Ts is optional; when omitted the
// entry is stamped with the server clock.
func (h *TranscriptHandler) Append(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}

	// System entries are machine-authored (snapshot notes, suggestion
	// resolutions); clients may only speak as user or ai.
	var req struct {
		Speaker string  `json:"speaker" validate:"required,oneof=user ai"`
		Text    string  `json:"text" validate:"required"`
		Ts      float64 `json:"ts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.store.AppendEntry(domain.Speaker(req.Speaker), req.Text, req.Ts); err != nil {
		writeStoreError(w, err)
		return
	}
	h.metrics.TranscriptEntries.Inc()

	response.OK(w, h.store.State().Transcript)
}
