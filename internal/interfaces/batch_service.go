package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/mediascope/internal/models"
)

// BatchFileUpload is one file in a multi-file upload request
type BatchFileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// BatchService uploads groups of files and tracks their analysis as one
// job. Batch state lives in a bounded in-memory registry; finished
// batches are evicted by the cleanup scheduler.
type BatchService interface {
	// Upload stores every file and queues an analysis run per accepted
	// file. A rejected file is recorded in the batch, never fatal for
	// the others.
	Upload(ctx context.Context, files []BatchFileUpload) (*models.Batch, error)

	// Get returns the batch with each member's current run state folded in
	Get(ctx context.Context, id string) (*models.Batch, bool)

	List(ctx context.Context) []*models.Batch

	// Delete removes the batch and every member media item with its
	// dependent records
	Delete(ctx context.Context, id string) error
}
