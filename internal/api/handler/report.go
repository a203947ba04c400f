package handler

import (
	"net/http"

	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/report"
	"github.com/oscelab/osce-review/internal/session"
)

// ReportHandler serves the feedback summary and the email draft.
type ReportHandler struct {
	store     *session.Store
	recipient string
}

// NewReportHandler creates a new report handler
func NewReportHandler(store *session.Store, recipient string) *ReportHandler {
	return &ReportHandler{store: store, recipient: recipient}
}

// Summary returns the memoized session summary. The summary exists only
// once the session has ended.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()
	if state.Status != domain.SessionEnded || state.Summary == nil {
		response.Conflict(w, "summary is generated when the session ends")
		return
	}
	response.OK(w, map[string]string{"summary": *state.Summary})
}

// Email returns the pre-filled report draft: subject, body, and a mailto
// URL when a recipient is configured. Transmission is the client's job.
func (h *ReportHandler) Email(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()
	if state.Status != domain.SessionEnded {
		response.Conflict(w, "report is available when the session ends")
		return
	}

	email := report.BuildEmail(state)
	payload := map[string]string{
		"subject": email.Subject,
		"body":    email.Body,
	}
	if h.recipient != "" {
		payload["mailto"] = email.Mailto(h.recipient)
	}
	response.OK(w, payload)
}
