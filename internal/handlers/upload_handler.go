package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/services/pipeline"
)

// UploadHandler accepts multipart file uploads and queues them for
// analysis
type UploadHandler struct {
	media    interfaces.MediaService
	pipeline interfaces.PipelineService
	logger   arbor.ILogger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(media interfaces.MediaService, pipelineSvc interfaces.PipelineService, logger arbor.ILogger) *UploadHandler {
	return &UploadHandler{
		media:    media,
		pipeline: pipelineSvc,
		logger:   logger,
	}
}

// HandleUpload handles POST /api/upload. The file is stored, a media
// record is created, and an analysis run is queued. Responds 202 with
// the media record so clients can open the event stream immediately.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	media, err := h.media.Upload(r.Context(), header.Filename, contentType, header.Size, file)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Upload rejected")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pipeline.Submit(r.Context(), media); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			WriteError(w, http.StatusServiceUnavailable, "analysis queue is full, try again later")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("media_id", media.ID).
		Str("filename", media.Filename).
		Str("media_type", string(media.MediaType)).
		Int64("size_bytes", media.SizeBytes).
		Msg("Media uploaded and queued")

	WriteJSON(w, http.StatusAccepted, media)
}
