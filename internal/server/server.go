package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/mediascope/internal/app"
)

// Server manages the HTTP server and routes
type Server struct {
	app          *app.App
	router       *http.ServeMux
	server       *http.Server
	shutdownChan chan struct{}
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withConditionalMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // large uploads and slow analysis exports
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetShutdownChannel sets the channel used to request shutdown over HTTP
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)

	s.app.Logger.Info().
		Str("address", addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}

// ShutdownHandler handles POST /api/shutdown (dev mode only)
func (s *Server) ShutdownHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.app.Config.IsProduction() {
		http.Error(w, "Not available in production", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("shutting down"))

	if s.shutdownChan != nil {
		close(s.shutdownChan)
	}
}
