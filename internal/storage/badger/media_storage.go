package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MediaStorage implements the MediaStorage interface for Badger
type MediaStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMediaStorage creates a new MediaStorage instance
func NewMediaStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MediaStorage {
	return &MediaStorage{
		db:     db,
		logger: logger,
	}
}

// Store inserts or updates a media record
func (s *MediaStorage) Store(ctx context.Context, media *models.Media) error {
	if media.ID == "" {
		return fmt.Errorf("media ID is required")
	}

	media.UpdatedAt = time.Now()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = media.UpdatedAt
	}

	if err := s.db.Store().Upsert(media.ID, media); err != nil {
		return fmt.Errorf("failed to store media %s: %w", media.ID, err)
	}

	return nil
}

// Get retrieves a media record by ID. Returns nil when not found.
func (s *MediaStorage) Get(ctx context.Context, id string) (*models.Media, error) {
	var media models.Media
	if err := s.db.Store().Get(id, &media); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get media %s: %w", id, err)
	}
	return &media, nil
}

// List returns media records ordered by creation time, newest first
func (s *MediaStorage) List(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	var items []*models.Media
	query := &badgerhold.Query{}
	query = query.SortBy("CreatedAt").Reverse()
	if offset > 0 {
		query = query.Skip(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := s.db.Store().Find(&items, query); err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return items, nil
}

// Delete removes a media record
func (s *MediaStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Media{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete media %s: %w", id, err)
	}
	return nil
}

// Count returns the total number of media records
func (s *MediaStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Media{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return int(count), nil
}
