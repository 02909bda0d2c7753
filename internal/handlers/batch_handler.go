package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// maxBatchMemoryBytes bounds how much of a multipart batch request is
// buffered in memory before spilling to disk
const maxBatchMemoryBytes = 64 << 20

// BatchHandler serves multi-file uploads and batch job tracking
type BatchHandler struct {
	batch  interfaces.BatchService
	logger arbor.ILogger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batch interfaces.BatchService, logger arbor.ILogger) *BatchHandler {
	return &BatchHandler{
		batch:  batch,
		logger: logger,
	}
}

// UploadHandler handles POST /api/batch/upload with a multipart "files"
// field. Responds 202 with the batch job so clients can poll its status.
func (h *BatchHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxBatchMemoryBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		WriteError(w, http.StatusBadRequest, "missing files field")
		return
	}

	files := make([]interfaces.BatchFileUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s", header.Filename))
			return
		}
		defer file.Close()

		files = append(files, interfaces.BatchFileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		})
	}

	batch, err := h.batch.Upload(r.Context(), files)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("batch_id", batch.ID).
		Int("files", batch.TotalFiles).
		Msg("Batch uploaded")

	WriteJSON(w, http.StatusAccepted, batch)
}

// ListHandler handles GET /api/batch
func (h *BatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	batches := h.batch.List(r.Context())
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"batches": batches,
		"count":   len(batches),
	})
}

// ItemHandler dispatches GET and DELETE /api/batch/{id}
func (h *BatchHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	batchID := strings.TrimPrefix(r.URL.Path, "/api/batch/")
	if batchID == "" || strings.Contains(batchID, "/") {
		WriteError(w, http.StatusBadRequest, "batch ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		batch, ok := h.batch.Get(r.Context(), batchID)
		if !ok {
			WriteError(w, http.StatusNotFound, "batch not found")
			return
		}
		WriteJSON(w, http.StatusOK, batch)

	case http.MethodDelete:
		if err := h.batch.Delete(r.Context(), batchID); err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteSuccess(w, "batch deleted")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
