package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// APIHandler serves health, version, and system status endpoints
type APIHandler struct {
	config   *common.Config
	storage  interfaces.StorageManager
	pipeline interfaces.PipelineService
	logger   arbor.ILogger
}

func NewAPIHandler(config *common.Config, storage interfaces.StorageManager, pipeline interfaces.PipelineService) *APIHandler {
	return &APIHandler{
		config:   config,
		storage:  storage,
		pipeline: pipeline,
		logger:   common.GetLogger(),
	}
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// StatusHandler returns media counts and storage details for GET /api/status
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	mediaCount, err := h.storage.MediaStorage().Count(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count media")
	}
	resultCount, err := h.storage.ResultStorage().Count(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count results")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":  h.config.Environment,
		"version":      common.GetVersion(),
		"media_count":  mediaCount,
		"active_runs":  h.pipeline.ActiveRuns(),
		"result_count": resultCount,
		"goroutines":   common.GetGoroutineCount(),
		"storage_path": h.config.Storage.Badger.Path,
		"upload_dir":   h.config.Upload.Dir,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
