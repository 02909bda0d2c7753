package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - per-media event stream
	mux.HandleFunc("/ws/", s.app.WSHandler.HandleWebSocket)

	// API routes - Upload
	mux.HandleFunc("/api/upload", s.app.UploadHandler.HandleUpload)

	// API routes - Media
	mux.HandleFunc("/api/media", s.app.MediaHandler.ListHandler)
	mux.HandleFunc("/api/media/", s.app.MediaHandler.ItemHandler) // GET/DELETE /{id} and subpaths

	// API routes - Batch
	mux.HandleFunc("/api/batch", s.app.BatchHandler.ListHandler)
	mux.HandleFunc("/api/batch/upload", s.app.BatchHandler.UploadHandler)
	mux.HandleFunc("/api/batch/", s.app.BatchHandler.ItemHandler) // GET/DELETE /{id}

	// API routes - Chat
	mux.HandleFunc("/api/ask", s.app.ChatHandler.AskHandler)
	mux.HandleFunc("/api/chat/", s.app.ChatHandler.HistoryHandler) // GET /{media_id}

	// API routes - Export
	mux.HandleFunc("/api/export/", s.app.ExportHandler.ExportHandler) // GET /{media_id}/{format}

	// API routes - System
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/status", s.app.APIHandler.StatusHandler)
	mux.HandleFunc("/api/shutdown", s.ShutdownHandler) // Graceful shutdown endpoint (dev mode)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
