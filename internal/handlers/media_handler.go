package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// MediaHandler serves media records and their analysis history
type MediaHandler struct {
	media    interfaces.MediaService
	storage  interfaces.StorageManager
	pipeline interfaces.PipelineService
	logger   arbor.ILogger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media interfaces.MediaService, storage interfaces.StorageManager, pipelineSvc interfaces.PipelineService, logger arbor.ILogger) *MediaHandler {
	return &MediaHandler{
		media:    media,
		storage:  storage,
		pipeline: pipelineSvc,
		logger:   logger,
	}
}

// ListHandler handles GET /api/media with limit/offset pagination
func (h *MediaHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := QueryInt(r, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := QueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.media.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list media")
		WriteError(w, http.StatusInternalServerError, "failed to list media")
		return
	}

	total, err := h.storage.MediaStorage().Count(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count media")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"media":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ItemHandler dispatches /api/media/{id} and its sub-resources:
//
//	GET    /api/media/{id}            media record
//	DELETE /api/media/{id}            delete media and all derived data
//	GET    /api/media/{id}/analysis   stage result history
//	GET    /api/media/{id}/segments   transcript segments
//	GET    /api/media/{id}/status     pipeline run status
//	GET    /api/media/{id}/download   original uploaded file
func (h *MediaHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/media/")
	parts := strings.SplitN(path, "/", 2)
	mediaID := parts[0]
	if mediaID == "" {
		WriteError(w, http.StatusBadRequest, "media ID required")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getMedia(w, r, mediaID)
		case http.MethodDelete:
			h.deleteMedia(w, r, mediaID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	switch parts[1] {
	case "analysis":
		h.getAnalysis(w, r, mediaID)
	case "segments":
		h.getSegments(w, r, mediaID)
	case "status":
		h.getStatus(w, r, mediaID)
	case "download":
		h.download(w, r, mediaID)
	default:
		WriteError(w, http.StatusNotFound, "unknown resource")
	}
}

func (h *MediaHandler) getMedia(w http.ResponseWriter, r *http.Request, mediaID string) {
	media, err := h.media.Get(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if media == nil {
		WriteError(w, http.StatusNotFound, "media not found")
		return
	}

	response := map[string]interface{}{
		"media": media,
	}

	latest, err := h.storage.ResultStorage().LatestAnalysis(r.Context(), mediaID)
	if err != nil {
		h.logger.Warn().Err(err).Str("media_id", mediaID).Msg("Failed to load latest analysis")
	} else if latest != nil {
		response["analysis"] = latest.Payload
		if summary, ok := latest.Payload["summary"]; ok {
			response["summary"] = summary
		}
	}

	if status, ok := h.pipeline.Status(mediaID); ok {
		response["run"] = status
	}

	WriteJSON(w, http.StatusOK, response)
}

func (h *MediaHandler) deleteMedia(w http.ResponseWriter, r *http.Request, mediaID string) {
	media, err := h.media.Get(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if media == nil {
		WriteError(w, http.StatusNotFound, "media not found")
		return
	}

	if err := h.media.Delete(r.Context(), mediaID); err != nil {
		h.logger.Error().Err(err).Str("media_id", mediaID).Msg("Failed to delete media")
		WriteError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}

	h.logger.Info().Str("media_id", mediaID).Msg("Media deleted")
	WriteSuccess(w, "media deleted")
}

func (h *MediaHandler) getAnalysis(w http.ResponseWriter, r *http.Request, mediaID string) {
	results, err := h.storage.ResultStorage().GetByMedia(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"media_id": mediaID,
		"results":  results,
		"count":    len(results),
	})
}

func (h *MediaHandler) getSegments(w http.ResponseWriter, r *http.Request, mediaID string) {
	segments, err := h.storage.SegmentStorage().GetByMedia(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"media_id": mediaID,
		"segments": segments,
		"count":    len(segments),
	})
}

func (h *MediaHandler) getStatus(w http.ResponseWriter, r *http.Request, mediaID string) {
	status, ok := h.pipeline.Status(mediaID)
	if !ok {
		WriteError(w, http.StatusNotFound, "no run found for media")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

func (h *MediaHandler) download(w http.ResponseWriter, r *http.Request, mediaID string) {
	media, err := h.media.Get(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if media == nil {
		WriteError(w, http.StatusNotFound, "media not found")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+media.Filename+"\"")
	if media.ContentType != "" {
		w.Header().Set("Content-Type", media.ContentType)
	}
	http.ServeFile(w, r, media.StoragePath)
}
