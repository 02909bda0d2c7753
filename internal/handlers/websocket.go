package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const writeTimeout = 10 * time.Second

// wsSubscriber adapts one WebSocket connection to the Subscriber
// interface. The mutex serializes writes since gorilla/websocket allows
// only one concurrent writer.
type wsSubscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSubscriber) Send(event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(event)
}

// WebSocketHandler upgrades connections and registers them for one media
// item's event stream
type WebSocketHandler struct {
	notifier interfaces.Notifier
	storage  interfaces.StorageManager
	logger   arbor.ILogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(notifier interfaces.Notifier, storage interfaces.StorageManager, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		notifier: notifier,
		storage:  storage,
		logger:   logger,
	}
}

// HandleWebSocket handles GET /ws/{media_id}. The connection receives
// progress and terminal events for that media item only.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	mediaID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if mediaID == "" || strings.Contains(mediaID, "/") {
		WriteError(w, http.StatusBadRequest, "media ID required")
		return
	}

	media, err := h.storage.MediaStorage().Get(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if media == nil {
		WriteError(w, http.StatusNotFound, "media not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	sub := &wsSubscriber{conn: conn}
	h.notifier.Subscribe(mediaID, sub)

	h.logger.Debug().
		Str("media_id", mediaID).
		Str("remote", r.RemoteAddr).
		Msg("WebSocket client connected")

	// Read loop exists only to detect close; clients never send payloads
	common.SafeGo(h.logger, "ws-read-"+mediaID, func() {
		defer func() {
			h.notifier.Unsubscribe(mediaID, sub)
			conn.Close()
			h.logger.Debug().Str("media_id", mediaID).Msg("WebSocket client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
