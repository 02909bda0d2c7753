package interfaces

import (
	"context"

	"github.com/ternarybob/mediascope/internal/models"
)

// MediaStorage - interface for media item persistence
type MediaStorage interface {
	Store(ctx context.Context, media *models.Media) error
	Get(ctx context.Context, id string) (*models.Media, error)
	List(ctx context.Context, limit, offset int) ([]*models.Media, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ResultStorage - append-only store of pipeline stage records.
// Records are never updated in place; Append assigns a monotonically
// increasing sequence so that "latest" is well defined even within the
// same wall-clock instant.
type ResultStorage interface {
	Append(ctx context.Context, result *models.StageResult) error
	GetByMedia(ctx context.Context, mediaID string) ([]*models.StageResult, error)
	// Latest returns the most recently appended record for the media item,
	// or nil when none exists.
	Latest(ctx context.Context, mediaID string) (*models.StageResult, error)
	// LatestAnalysis returns the most recently appended non-error record,
	// or nil when none exists.
	LatestAnalysis(ctx context.Context, mediaID string) (*models.StageResult, error)
	DeleteByMedia(ctx context.Context, mediaID string) error
	Count(ctx context.Context) (int, error)
}

// SegmentStorage - interface for transcript segment persistence
type SegmentStorage interface {
	AppendBatch(ctx context.Context, segments []*models.TranscriptSegment) error
	GetByMedia(ctx context.Context, mediaID string) ([]*models.TranscriptSegment, error)
	DeleteByMedia(ctx context.Context, mediaID string) error
}

// ChatStorage - interface for question/answer history persistence
type ChatStorage interface {
	Append(ctx context.Context, message *models.ChatMessage) error
	GetByMedia(ctx context.Context, mediaID string) ([]*models.ChatMessage, error)
	DeleteByMedia(ctx context.Context, mediaID string) error
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	MediaStorage() MediaStorage
	ResultStorage() ResultStorage
	SegmentStorage() SegmentStorage
	ChatStorage() ChatStorage
	Close() error
}
