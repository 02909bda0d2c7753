package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExportHandler renders analysis reports in downloadable formats
type ExportHandler struct {
	report  interfaces.ReportService
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewExportHandler creates a new export handler
func NewExportHandler(report interfaces.ReportService, storage interfaces.StorageManager, logger arbor.ILogger) *ExportHandler {
	return &ExportHandler{
		report:  report,
		storage: storage,
		logger:  logger,
	}
}

// ExportHandler handles GET /api/export/{media_id}/{format} where format
// is one of markdown, pdf, html, json
func (h *ExportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/export/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "expected /api/export/{media_id}/{format}")
		return
	}
	mediaID, format := parts[0], parts[1]

	media, err := h.storage.MediaStorage().Get(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if media == nil {
		WriteError(w, http.StatusNotFound, "media not found")
		return
	}

	switch format {
	case "markdown":
		data, err := h.report.Markdown(r.Context(), mediaID)
		if err != nil {
			h.logger.Error().Err(err).Str("media_id", mediaID).Msg("Markdown export failed")
			WriteError(w, http.StatusInternalServerError, "export failed")
			return
		}
		h.serve(w, mediaID, "md", "text/markdown; charset=utf-8", data)

	case "pdf":
		data, err := h.report.PDF(r.Context(), mediaID)
		if err != nil {
			h.logger.Error().Err(err).Str("media_id", mediaID).Msg("PDF export failed")
			WriteError(w, http.StatusInternalServerError, "export failed")
			return
		}
		h.serve(w, mediaID, "pdf", "application/pdf", data)

	case "html":
		markdown, err := h.report.Markdown(r.Context(), mediaID)
		if err != nil {
			h.logger.Error().Err(err).Str("media_id", mediaID).Msg("HTML export failed")
			WriteError(w, http.StatusInternalServerError, "export failed")
			return
		}
		var buf bytes.Buffer
		md := goldmark.New(goldmark.WithExtensions(extension.Table))
		if err := md.Convert(markdown, &buf); err != nil {
			WriteError(w, http.StatusInternalServerError, "export failed")
			return
		}
		h.serve(w, mediaID, "html", "text/html; charset=utf-8", buf.Bytes())

	case "json":
		h.exportJSON(w, r, mediaID)

	default:
		WriteError(w, http.StatusBadRequest, "unknown format: "+format)
	}
}

func (h *ExportHandler) exportJSON(w http.ResponseWriter, r *http.Request, mediaID string) {
	media, err := h.storage.MediaStorage().Get(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	report := map[string]interface{}{
		"media": media,
	}

	if latest, err := h.storage.ResultStorage().LatestAnalysis(r.Context(), mediaID); err == nil && latest != nil {
		report["analysis"] = latest.Payload
	}
	if segments, err := h.storage.SegmentStorage().GetByMedia(r.Context(), mediaID); err == nil && len(segments) > 0 {
		report["segments"] = segments
	}
	if messages, err := h.storage.ChatStorage().GetByMedia(r.Context(), mediaID); err == nil && len(messages) > 0 {
		report["conversation"] = messages
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+mediaID+"-report.json\"")
	WriteJSON(w, http.StatusOK, report)
}

func (h *ExportHandler) serve(w http.ResponseWriter, mediaID, ext, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+mediaID+"-report."+ext+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
