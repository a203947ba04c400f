package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
)

// SnapshotHandler stores camera snapshots and notes them in the transcript.
type SnapshotHandler struct {
	store    *session.Store
	metrics  *metrics.Metrics
	dir      string
	maxBytes int64
}

// NewSnapshotHandler creates a new snapshot handler. The snapshot directory
// is created up front so a misconfigured path fails at startup.
func NewSnapshotHandler(store *session.Store, m *metrics.Metrics, dir string, maxUploadBytes int64) (*SnapshotHandler, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}
	return &SnapshotHandler{store: store, metrics: m, dir: dir, maxBytes: maxUploadBytes}, nil
}

// Upload saves a snapshot image under a unique name and appends a system
// transcript entry recording the capture.
func (h *SnapshotHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !requireUserDetails(w, h.store) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.BadRequest(w, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowedExts[ext] {
		response.BadRequest(w, "invalid file type. Allowed: .jpg, .jpeg, .png, .webp")
		return
	}

	uniqueName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(h.dir, uniqueName)

	dst, err := os.Create(destPath)
	if err != nil {
		response.InternalError(w, "failed to save snapshot")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(destPath) // cleanup on error
		response.InternalError(w, "failed to save snapshot")
		return
	}

	note := fmt.Sprintf("Snapshot captured (size %d bytes)", size)
	if err := h.store.AppendEntry(domain.SpeakerSystem, note, 0); err != nil {
		os.Remove(destPath)
		writeStoreError(w, err)
		return
	}
	h.metrics.SnapshotsSaved.Inc()

	response.OK(w, map[string]any{
		"file_name":     uniqueName,
		"original_name": header.Filename,
		"size":          size,
	})
}
