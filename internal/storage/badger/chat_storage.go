package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ChatStorage implements the ChatStorage interface for Badger
type ChatStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChatStorage creates a new ChatStorage instance
func NewChatStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChatStorage {
	return &ChatStorage{
		db:     db,
		logger: logger,
	}
}

// Append records a question/answer exchange
func (s *ChatStorage) Append(ctx context.Context, message *models.ChatMessage) error {
	if message.MediaID == "" {
		return fmt.Errorf("chat message requires a media ID")
	}
	if message.ID == "" {
		message.ID = "chat_" + uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(badgerhold.NextSequence(), message); err != nil {
		return fmt.Errorf("failed to append chat message for %s: %w", message.MediaID, err)
	}
	return nil
}

// GetByMedia returns the chat history for a media item in order
func (s *ChatStorage) GetByMedia(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	query := badgerhold.Where("MediaID").Eq(mediaID).Index("MediaID").SortBy("Seq")

	if err := s.db.Store().Find(&messages, query); err != nil {
		return nil, fmt.Errorf("failed to get chat history for %s: %w", mediaID, err)
	}
	return messages, nil
}

// DeleteByMedia removes the chat history for a media item
func (s *ChatStorage) DeleteByMedia(ctx context.Context, mediaID string) error {
	if err := s.db.Store().DeleteMatching(&models.ChatMessage{}, badgerhold.Where("MediaID").Eq(mediaID)); err != nil {
		return fmt.Errorf("failed to delete chat history for %s: %w", mediaID, err)
	}
	return nil
}
