package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// ChatHandler handles question answering over analyzed media
type ChatHandler struct {
	chatService interfaces.ChatService
	validate    *validator.Validate
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// AskHandler handles POST /api/ask requests
func (h *ChatHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode ask request")
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "media_id and question are required")
		return
	}

	h.logger.Info().
		Str("media_id", req.MediaID).
		Int("question_length", len(req.Question)).
		Msg("Processing question")

	response, err := h.chatService.Ask(r.Context(), req.MediaID, req.Question)
	if err != nil {
		h.logger.Error().Err(err).Str("media_id", req.MediaID).Msg("Failed to answer question")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

// HistoryHandler handles GET /api/chat/{media_id} requests
func (h *ChatHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	mediaID := strings.TrimPrefix(r.URL.Path, "/api/chat/")
	if mediaID == "" || strings.Contains(mediaID, "/") {
		WriteError(w, http.StatusBadRequest, "media ID required")
		return
	}

	messages, err := h.chatService.History(r.Context(), mediaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"media_id": mediaID,
		"messages": messages,
		"count":    len(messages),
	})
}
