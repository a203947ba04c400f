package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/codec"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
)

// ExportHandler saves and restores sessions through the JSON codec.
type ExportHandler struct {
	store    *session.Store
	metrics  *metrics.Metrics
	maxBytes int64
}

// NewExportHandler creates a new export handler
func NewExportHandler(store *session.Store, m *metrics.Metrics, maxUploadBytes int64) *ExportHandler {
	return &ExportHandler{store: store, metrics: m, maxBytes: maxUploadBytes}
}

// Export serves the current session as a downloadable JSON document.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := codec.Encode(h.store.State())
	if err != nil {
		response.InternalError(w, "failed to encode session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="osce_session.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import restores a saved session document. The restored session is marked
// ended, matching how a resumed session is presented for review. The upload
// may be a multipart "file" field or a raw JSON body.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := h.readUpload(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	doc, err := codec.Decode(data)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	h.store.Restore(doc.UserDetails, doc.Rubric, doc.Transcript, doc.Summary)
	h.metrics.SessionsImported.Inc()

	response.OK(w, h.store.State())
}

func (h *ExportHandler) readUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return nil, errors.New("invalid multipart upload")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("no file uploaded")
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}
