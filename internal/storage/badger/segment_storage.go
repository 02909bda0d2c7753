package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SegmentStorage implements the SegmentStorage interface for Badger
type SegmentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSegmentStorage creates a new SegmentStorage instance
func NewSegmentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SegmentStorage {
	return &SegmentStorage{
		db:     db,
		logger: logger,
	}
}

// AppendBatch writes transcript segments in order
func (s *SegmentStorage) AppendBatch(ctx context.Context, segments []*models.TranscriptSegment) error {
	for _, segment := range segments {
		if segment.MediaID == "" {
			return fmt.Errorf("transcript segment requires a media ID")
		}
		if segment.ID == "" {
			segment.ID = common.NewSegmentID()
		}
		if err := s.db.Store().Insert(badgerhold.NextSequence(), segment); err != nil {
			return fmt.Errorf("failed to append transcript segment for %s: %w", segment.MediaID, err)
		}
	}

	if len(segments) > 0 {
		s.logger.Debug().
			Str("media_id", segments[0].MediaID).
			Int("count", len(segments)).
			Msg("Appended transcript segments")
	}

	return nil
}

// GetByMedia returns all transcript segments for a media item in order
func (s *SegmentStorage) GetByMedia(ctx context.Context, mediaID string) ([]*models.TranscriptSegment, error) {
	var segments []*models.TranscriptSegment
	query := badgerhold.Where("MediaID").Eq(mediaID).Index("MediaID").SortBy("Index")

	if err := s.db.Store().Find(&segments, query); err != nil {
		return nil, fmt.Errorf("failed to get transcript segments for %s: %w", mediaID, err)
	}
	return segments, nil
}

// DeleteByMedia removes all transcript segments for a media item
func (s *SegmentStorage) DeleteByMedia(ctx context.Context, mediaID string) error {
	if err := s.db.Store().DeleteMatching(&models.TranscriptSegment{}, badgerhold.Where("MediaID").Eq(mediaID)); err != nil {
		return fmt.Errorf("failed to delete transcript segments for %s: %w", mediaID, err)
	}
	return nil
}
