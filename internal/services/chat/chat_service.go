package chat

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// historyWindow is how many prior exchanges are replayed to the LLM
const historyWindow = 3

// Service answers questions about analyzed media items, grounding the LLM
// on the item's latest analysis record
type Service struct {
	storage interfaces.StorageManager
	llm     interfaces.LLMService
	logger  arbor.ILogger
}

// NewService creates a new chat service
func NewService(storage interfaces.StorageManager, llm interfaces.LLMService, logger arbor.ILogger) interfaces.ChatService {
	return &Service{
		storage: storage,
		llm:     llm,
		logger:  logger,
	}
}

// BuildContext assembles the grounding context for a media item: the
// payload of the latest non-error analysis record, merged with the
// media_type and filename keys which always reflect the media record
// itself. An item with no analysis yields an empty map, never nil, which
// tells callers the item has not been analyzed yet.
func (s *Service) BuildContext(ctx context.Context, mediaID string) (map[string]interface{}, error) {
	media, err := s.storage.MediaStorage().Get(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, fmt.Errorf("media %s not found", mediaID)
	}

	latest, err := s.storage.ResultStorage().LatestAnalysis(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return map[string]interface{}{}, nil
	}

	grounding := make(map[string]interface{}, len(latest.Payload)+2)
	for k, v := range latest.Payload {
		grounding[k] = v
	}

	// Reserved keys come from the media record, overriding any payload
	// fields of the same name
	grounding["media_type"] = string(media.MediaType)
	grounding["filename"] = media.Filename

	return grounding, nil
}

// Ask answers a question about a media item and records the exchange
func (s *Service) Ask(ctx context.Context, mediaID, question string) (*models.AskResponse, error) {
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	grounding, err := s.BuildContext(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	system, err := buildSystemPrompt(grounding)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	// Carry recent exchanges so follow-up questions resolve references
	history, err := s.storage.ChatStorage().GetByMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	messages := make([]interfaces.Message, 0, len(history)*2+1)
	for _, msg := range history {
		messages = append(messages,
			interfaces.Message{Role: "user", Content: msg.Question},
			interfaces.Message{Role: "assistant", Content: msg.Answer})
	}
	messages = append(messages, interfaces.Message{Role: "user", Content: question})

	answer, provider := s.generateAnswer(ctx, system, messages, grounding, mediaID)

	record := &models.ChatMessage{
		MediaID:  mediaID,
		Question: question,
		Answer:   answer,
		Provider: provider,
	}
	if err := s.storage.ChatStorage().Append(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("media_id", mediaID).Msg("Failed to record chat exchange")
	}

	return &models.AskResponse{
		MediaID:  mediaID,
		Question: question,
		Answer:   answer,
		Provider: provider,
		Sources:  contextSources(grounding),
	}, nil
}

// generateAnswer asks the LLM and degrades to a facts-only answer when no
// provider is configured or the call fails
func (s *Service) generateAnswer(ctx context.Context, system string, messages []interfaces.Message, grounding map[string]interface{}, mediaID string) (string, string) {
	if s.llm == nil {
		return fallbackAnswer(grounding), "fallback"
	}

	answer, err := s.llm.Chat(ctx, system, messages)
	if err != nil {
		s.logger.Warn().Err(err).Str("media_id", mediaID).Msg("LLM call failed, answering from analysis facts")
		return fallbackAnswer(grounding), "fallback"
	}

	return answer, s.llm.GetProviderName()
}

// History returns the chat history for a media item
func (s *Service) History(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
	return s.storage.ChatStorage().GetByMedia(ctx, mediaID)
}
