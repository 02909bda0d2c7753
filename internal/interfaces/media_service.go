package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/mediascope/internal/models"
)

// MediaService owns the media item lifecycle: upload validation, file
// storage, and deletion
type MediaService interface {
	// Upload validates and stores an uploaded file, classifies its media
	// type, and persists the media record
	Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.Media, error)

	Get(ctx context.Context, id string) (*models.Media, error)
	List(ctx context.Context, limit, offset int) ([]*models.Media, error)

	// Delete removes the media record, its stored file, and all dependent
	// records (stage results, segments, chat history)
	Delete(ctx context.Context, id string) error
}
