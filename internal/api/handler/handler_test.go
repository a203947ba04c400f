package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oscelab/osce-review/internal/api"
	"github.com/oscelab/osce-review/internal/codec"
	"github.com/oscelab/osce-review/internal/config"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, *session.Store) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
		},
		Session: config.SessionConfig{
			DefaultDurationMinutes: 10,
		},
		Snapshots: config.SnapshotsConfig{
			Dir:         t.TempDir(),
			MaxUploadMB: 1,
		},
		Mail: config.MailConfig{
			Recipient: "reviews@example.org",
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
	store := session.NewStore(domain.DefaultRubric(), nil)
	h, err := api.NewRouter(cfg, store, metrics.New())
	require.NoError(t, err)
	return h, store
}

// doJSON performs a request with an optional JSON body and decodes the
// standard response envelope.
func doJSON(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return rec.Code, envelope
}

func setupParticipant(t *testing.T, h http.Handler) {
	t.Helper()
	code, _ := doJSON(t, h, http.MethodPost, "/api/v1/session/user", map[string]any{
		"name":             "Asha",
		"phone":            "555-0101",
		"designation":      "Final-year student",
		"duration_minutes": 15,
	})
	require.Equal(t, http.StatusOK, code)
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestServer(t)
	code, envelope := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, envelope["success"])
}

func TestStartRequiresUserDetails(t *testing.T) {
	h, _ := newTestServer(t)
	code, envelope := doJSON(t, h, http.MethodPost, "/api/v1/session/start", nil)

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, envelope["success"])
}

func TestCommandsRequireUserDetails(t *testing.T) {
	h, store := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"transcript append", http.MethodPost, "/api/v1/transcript",
			map[string]any{"speaker": "user", "text": "Hi doctor"}},
		{"rubric edit", http.MethodPut, "/api/v1/rubric/hand_hygiene",
			map[string]any{"status": "met"}},
		{"suggestion propose", http.MethodPost, "/api/v1/suggestion",
			map[string]any{"skill_id": "hand_hygiene", "status": "met"}},
		{"suggestion accept", http.MethodPost, "/api/v1/suggestion/accept", nil},
		{"suggestion reject", http.MethodPost, "/api/v1/suggestion/reject", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, envelope := doJSON(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusConflict, code)
			assert.Equal(t, false, envelope["success"])
		})
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "capture.png")
	require.NoError(t, err)
	part.Write([]byte("pixels"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	state := store.State()
	assert.Empty(t, state.Transcript)
	for _, item := range state.Rubric {
		assert.Equal(t, domain.StatusPending, item.Status)
	}
}

func TestTranscript_RejectsSystemSpeaker(t *testing.T) {
	h, store := newTestServer(t)
	setupParticipant(t, h)

	code, _ := doJSON(t, h, http.MethodPost, "/api/v1/transcript", map[string]any{
		"speaker": "system", "text": "Snapshot captured (size 1 bytes)",
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Empty(t, store.State().Transcript)
}

func TestSetUser_Validation(t *testing.T) {
	h, _ := newTestServer(t)

	code, _ := doJSON(t, h, http.MethodPost, "/api/v1/session/user", map[string]any{"phone": "555"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, h, http.MethodPost, "/api/v1/session/user", map[string]any{
		"name": "Asha", "duration_minutes": 500,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSessionFlow(t *testing.T) {
	h, _ := newTestServer(t)
	setupParticipant(t, h)

	code, _ := doJSON(t, h, http.MethodPost, "/api/v1/session/start", nil)
	require.Equal(t, http.StatusOK, code)

	// Transcript: valid entries append, empty text is rejected.
	code, _ = doJSON(t, h, http.MethodPost, "/api/v1/transcript", map[string]any{
		"speaker": "user", "text": "Hi doctor",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, h, http.MethodPost, "/api/v1/transcript", map[string]any{
		"speaker": "user", "text": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// Rubric edits.
	code, _ = doJSON(t, h, http.MethodPut, "/api/v1/rubric/hand_hygiene", map[string]any{"status": "met"})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, h, http.MethodPut, "/api/v1/rubric/no_such_skill", map[string]any{"status": "met"})
	assert.Equal(t, http.StatusNotFound, code)

	// Suggestion round: propose then accept.
	code, _ = doJSON(t, h, http.MethodPost, "/api/v1/suggestion", map[string]any{
		"skill_id": "obtain_consent", "status": "not_met", "reasoning": "consent not asked",
	})
	require.Equal(t, http.StatusOK, code)

	code, envelope := doJSON(t, h, http.MethodPost, "/api/v1/suggestion/accept", nil)
	require.Equal(t, http.StatusOK, code)
	data := envelope["data"].(map[string]any)
	assert.Nil(t, data["pending_suggestion"])

	code, _ = doJSON(t, h, http.MethodPost, "/api/v1/suggestion/accept", nil)
	assert.Equal(t, http.StatusConflict, code)

	// End the session and read the reports.
	code, envelope = doJSON(t, h, http.MethodPost, "/api/v1/session/end", nil)
	require.Equal(t, http.StatusOK, code)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, "ended", data["status"])
	assert.Contains(t, data["summary"], "Dear Asha,")
	assert.Contains(t, data["summary"], "Strengths: Hand hygiene.")
	assert.Contains(t, data["summary"], "Areas for improvement: Obtains consent.")

	code, envelope = doJSON(t, h, http.MethodGet, "/api/v1/report/email", nil)
	require.Equal(t, http.StatusOK, code)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, "OSCE Skill Review Report for Asha", data["subject"])
	assert.Contains(t, data["body"], "--- FULL TRANSCRIPT ---")
	assert.Contains(t, data["mailto"], "mailto:reviews@example.org")
}

func TestReportsUnavailableBeforeEnd(t *testing.T) {
	h, _ := newTestServer(t)
	setupParticipant(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/session/start", nil)

	code, _ := doJSON(t, h, http.MethodGet, "/api/v1/report/summary", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = doJSON(t, h, http.MethodGet, "/api/v1/report/email", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestResolvePending(t *testing.T) {
	h, _ := newTestServer(t)
	setupParticipant(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/session/start", nil)
	doJSON(t, h, http.MethodPut, "/api/v1/rubric/hand_hygiene", map[string]any{"status": "met"})

	code, envelope := doJSON(t, h, http.MethodPost, "/api/v1/session/resolve-pending", nil)
	require.Equal(t, http.StatusOK, code)

	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(4), data["resolved"])
}

func TestExportImport(t *testing.T) {
	h, store := newTestServer(t)
	setupParticipant(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/session/start", nil)
	doJSON(t, h, http.MethodPost, "/api/v1/transcript", map[string]any{
		"speaker": "user", "text": "Hi doctor",
	})
	doJSON(t, h, http.MethodPost, "/api/v1/session/end", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/export", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "osce_session.json")

	exported := rec.Body.Bytes()
	doc, err := codec.Decode(exported)
	require.NoError(t, err)
	assert.Equal(t, "Asha", doc.UserDetails.Name)

	// Import the exported document into a fresh server.
	h2, store2 := newTestServer(t)
	code, envelope := doJSON(t, h2, http.MethodPost, "/api/v1/session/import", json.RawMessage(exported))
	require.Equal(t, http.StatusOK, code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "ended", data["status"])

	restored := store2.State()
	original := store.State()
	assert.Equal(t, original.UserDetails, restored.UserDetails)
	assert.Equal(t, original.Rubric, restored.Rubric)
	assert.Equal(t, original.Transcript, restored.Transcript)
	assert.Equal(t, original.Summary, restored.Summary)
}

func TestImport_MalformedDocument(t *testing.T) {
	h, _ := newTestServer(t)

	code, envelope := doJSON(t, h, http.MethodPost, "/api/v1/session/import",
		json.RawMessage(`{"transcript":[{"speaker":"user","ts":1}],"rubric":[]}`))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, envelope["success"])
}

func TestSnapshotUpload(t *testing.T) {
	h, store := newTestServer(t)
	setupParticipant(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/session/start", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "capture.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	transcript := store.State().Transcript
	require.Len(t, transcript, 1)
	assert.Equal(t, domain.SpeakerSystem, transcript[0].Speaker)
	assert.Equal(t, "Snapshot captured (size 16 bytes)", transcript[0].Text)
}

func TestSnapshotUpload_RejectsUnknownExtension(t *testing.T) {
	h, _ := newTestServer(t)
	setupParticipant(t, h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	part.Write([]byte("text"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
