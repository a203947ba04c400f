package handler

import (
	"encoding/json"
	"net/http"

	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
)

// SessionHandler drives the session lifecycle commands.
type SessionHandler struct {
	store           *session.Store
	metrics         *metrics.Metrics
	defaultDuration int
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *session.Store, m *metrics.Metrics, defaultDurationMinutes int) *SessionHandler {
	return &SessionHandler{store: store, metrics: m, defaultDuration: defaultDurationMinutes}
}

// sessionView is the session state as rendered to clients, with the derived
// elapsed time alongside the aggregate.
type sessionView struct {
	domain.Session
	ElapsedSeconds int `json:"elapsed_seconds"`
}

// State returns the full current session state.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	response.OK(w, sessionView{
		Session:        h.store.State(),
		ElapsedSeconds: h.store.ElapsedSeconds(),
	})
}

// SetUser records the participant details and planned duration.
func (h *SessionHandler) SetUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name" validate:"required"`
		Phone           string `json:"phone"`
		Designation     string `json:"designation"`
		DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=180"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = h.defaultDuration
	}

	details := domain.UserDetails{
		Name:        req.Name,
		Phone:       req.Phone,
		Designation: req.Designation,
	}
	if err := h.store.SetUserDetails(details, req.DurationMinutes); err != nil {
		writeStoreError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"user_details":     details,
		"duration_seconds": req.DurationMinutes * 60,
	})
}

// Start begins a fresh session, discarding any previous in-memory data.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}
	h.store.StartSession()
	h.metrics.SessionsStarted.Inc()
	response.OK(w, h.store.State())
}

// End transitions the session to ended and returns the memoized summary.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.store.EndSession(); err != nil {
		writeStoreError(w, err)
		return
	}
	h.metrics.SessionsEnded.Inc()

	state := h.store.State()
	response.OK(w, map[string]any{
		"status":  state.Status,
		"summary": state.Summary,
	})
}

// Clear resets transcript and rubric without touching the session status.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearSessionData()
	response.OK(w, h.store.State())
}

// ResolvePending marks all still-pending rubric items as not met.
func (h *SessionHandler) ResolvePending(w http.ResponseWriter, r *http.Request) {
	changed := h.store.BulkResolvePending()
	response.OK(w, map[string]any{
		"resolved": changed,
		"rubric":   h.store.State().Rubric,
	})
}
