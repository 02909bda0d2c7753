package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ResultStorage implements the append-only ResultStorage interface for
// Badger. Records are keyed by a badger sequence so insertion order is
// total even when two records share a timestamp.
type ResultStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewResultStorage creates a new ResultStorage instance
func NewResultStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ResultStorage {
	return &ResultStorage{
		db:     db,
		logger: logger,
	}
}

// Append writes a new stage record. The record's Seq is assigned from the
// store's sequence; existing records are never touched.
func (s *ResultStorage) Append(ctx context.Context, result *models.StageResult) error {
	if result.MediaID == "" {
		return fmt.Errorf("stage result requires a media ID")
	}
	if result.Stage == "" {
		return fmt.Errorf("stage result requires a stage name")
	}

	if result.ID == "" {
		result.ID = common.NewResultID()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	if result.Payload == nil {
		result.Payload = map[string]interface{}{}
	}

	if err := s.db.Store().Insert(badgerhold.NextSequence(), result); err != nil {
		return fmt.Errorf("failed to append stage result for %s: %w", result.MediaID, err)
	}

	s.logger.Debug().
		Str("media_id", result.MediaID).
		Str("stage", result.Stage).
		Msg("Appended stage result")

	return nil
}

// GetByMedia returns all stage records for a media item in insertion order
func (s *ResultStorage) GetByMedia(ctx context.Context, mediaID string) ([]*models.StageResult, error) {
	var results []*models.StageResult
	query := badgerhold.Where("MediaID").Eq(mediaID).Index("MediaID").SortBy("Seq")

	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to get stage results for %s: %w", mediaID, err)
	}
	return results, nil
}

// Latest returns the most recently appended record for a media item, or
// nil when none exists
func (s *ResultStorage) Latest(ctx context.Context, mediaID string) (*models.StageResult, error) {
	var results []*models.StageResult
	query := badgerhold.Where("MediaID").Eq(mediaID).Index("MediaID").SortBy("Seq").Reverse().Limit(1)

	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to get latest stage result for %s: %w", mediaID, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// LatestAnalysis returns the most recently appended non-error record for
// a media item, or nil when none exists
func (s *ResultStorage) LatestAnalysis(ctx context.Context, mediaID string) (*models.StageResult, error) {
	var results []*models.StageResult
	query := badgerhold.Where("MediaID").Eq(mediaID).Index("MediaID").
		And("Stage").Ne(models.StageError).
		SortBy("Seq").Reverse().Limit(1)

	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to get latest analysis for %s: %w", mediaID, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// DeleteByMedia removes all stage records for a media item
func (s *ResultStorage) DeleteByMedia(ctx context.Context, mediaID string) error {
	if err := s.db.Store().DeleteMatching(&models.StageResult{}, badgerhold.Where("MediaID").Eq(mediaID)); err != nil {
		return fmt.Errorf("failed to delete stage results for %s: %w", mediaID, err)
	}
	return nil
}

// Count returns the total number of stage records
func (s *ResultStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.StageResult{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count stage results: %w", err)
	}
	return int(count), nil
}
