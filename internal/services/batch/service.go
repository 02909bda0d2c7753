package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// MaxBatchFiles caps one batch upload request
const MaxBatchFiles = 20

// Service tracks multi-file uploads in a bounded in-memory registry.
// Member files go through the regular upload and pipeline paths; the
// batch itself only aggregates their state.
type Service struct {
	media    interfaces.MediaService
	pipeline interfaces.PipelineService
	logger   arbor.ILogger

	mu      sync.RWMutex
	batches map[string]*models.Batch
}

// NewService creates a new batch service
func NewService(media interfaces.MediaService, pipelineSvc interfaces.PipelineService, logger arbor.ILogger) *Service {
	return &Service{
		media:    media,
		pipeline: pipelineSvc,
		logger:   logger,
		batches:  make(map[string]*models.Batch),
	}
}

// Upload stores every file and queues an analysis run per accepted file
func (s *Service) Upload(ctx context.Context, files []interfaces.BatchFileUpload) (*models.Batch, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files in batch")
	}
	if len(files) > MaxBatchFiles {
		return nil, fmt.Errorf("batch exceeds maximum of %d files", MaxBatchFiles)
	}

	batch := &models.Batch{
		ID:         common.NewBatchID(),
		Status:     models.BatchStatusProcessing,
		TotalFiles: len(files),
		CreatedAt:  time.Now(),
	}

	for _, file := range files {
		entry := models.BatchFile{Filename: file.Filename}

		media, err := s.media.Upload(ctx, file.Filename, file.ContentType, file.Size, file.Reader)
		if err == nil {
			entry.MediaID = media.ID
			err = s.pipeline.Submit(ctx, media)
		}
		if err != nil {
			entry.Status = models.BatchFileFailed
			entry.Error = err.Error()
			s.logger.Warn().Err(err).Str("filename", file.Filename).Msg("Batch file rejected")
		} else {
			entry.Status = models.BatchFileQueued
		}

		batch.Files = append(batch.Files, entry)
	}

	s.mu.Lock()
	s.batches[batch.ID] = batch
	s.mu.Unlock()

	s.logger.Info().
		Str("batch_id", batch.ID).
		Int("files", batch.TotalFiles).
		Msg("Batch upload accepted")

	return s.snapshot(ctx, batch), nil
}

// Get returns the batch with each member's current run state folded in
func (s *Service) Get(ctx context.Context, id string) (*models.Batch, bool) {
	s.mu.RLock()
	batch, ok := s.batches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.snapshot(ctx, batch), true
}

// List returns all tracked batches, newest first
func (s *Service) List(ctx context.Context) []*models.Batch {
	s.mu.RLock()
	all := make([]*models.Batch, 0, len(s.batches))
	for _, batch := range s.batches {
		all = append(all, batch)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := make([]*models.Batch, len(all))
	for i, batch := range all {
		out[i] = s.snapshot(ctx, batch)
	}
	return out
}

// Delete removes the batch and every member media item
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	batch, ok := s.batches[id]
	if ok {
		delete(s.batches, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("batch %s not found", id)
	}

	for _, file := range batch.Files {
		if file.MediaID == "" {
			continue
		}
		if err := s.media.Delete(ctx, file.MediaID); err != nil {
			s.logger.Warn().Err(err).Str("media_id", file.MediaID).Msg("Failed to delete batch member")
		}
	}

	s.logger.Info().Str("batch_id", id).Msg("Batch deleted")
	return nil
}

// EvictFinished drops batches older than ttl whose members have all
// finished. Returns the number of evicted batches.
func (s *Service) EvictFinished(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	evicted := 0

	s.mu.Lock()
	for id, batch := range s.batches {
		if !batch.CreatedAt.Before(cutoff) {
			continue
		}
		if s.snapshot(context.Background(), batch).Status != models.BatchStatusProcessing {
			delete(s.batches, id)
			evicted++
		}
	}
	s.mu.Unlock()

	return evicted
}

// snapshot copies the batch, resolving each member's status from the
// live run registry, or from the media record once the run is evicted
func (s *Service) snapshot(ctx context.Context, batch *models.Batch) *models.Batch {
	out := *batch
	out.Files = make([]models.BatchFile, len(batch.Files))
	copy(out.Files, batch.Files)

	done := 0
	failed := 0
	for i := range out.Files {
		file := &out.Files[i]
		if file.MediaID == "" {
			failed++
			continue
		}

		if run, ok := s.pipeline.Status(file.MediaID); ok {
			file.Status = string(run.State)
			file.Error = run.Error
		} else if media, err := s.media.Get(ctx, file.MediaID); err == nil && media != nil {
			file.Status = string(media.Status)
			file.Error = media.Error
		}

		switch file.Status {
		case string(interfaces.RunStateCompleted):
			done++
		case string(interfaces.RunStateFailed):
			failed++
		}
	}

	switch {
	case done+failed < len(out.Files):
		out.Status = models.BatchStatusProcessing
	case failed == len(out.Files):
		out.Status = models.BatchStatusFailed
	default:
		out.Status = models.BatchStatusCompleted
	}

	return &out
}
