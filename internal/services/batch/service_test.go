package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// fakeMediaService accepts every upload except filenames listed in reject
type fakeMediaService struct {
	reject  map[string]bool
	items   map[string]*models.Media
	deleted []string
	nextID  int
}

func newFakeMediaService() *fakeMediaService {
	return &fakeMediaService{
		reject: map[string]bool{},
		items:  map[string]*models.Media{},
	}
}

func (f *fakeMediaService) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.Media, error) {
	if f.reject[filename] {
		return nil, errors.New("unsupported media type")
	}
	f.nextID++
	media := &models.Media{
		ID:        fmt.Sprintf("media-%d", f.nextID),
		Filename:  filename,
		MediaType: models.MediaTypeText,
		Status:    models.MediaStatusUploaded,
	}
	f.items[media.ID] = media
	return media, nil
}

func (f *fakeMediaService) Get(ctx context.Context, id string) (*models.Media, error) {
	return f.items[id], nil
}

func (f *fakeMediaService) List(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	return nil, nil
}

func (f *fakeMediaService) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.items, id)
	return nil
}

// fakePipeline records submissions and serves canned run states
type fakePipeline struct {
	submitted []string
	states    map[string]interfaces.RunState
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{states: map[string]interfaces.RunState{}}
}

func (f *fakePipeline) Submit(ctx context.Context, media *models.Media) error {
	f.submitted = append(f.submitted, media.ID)
	f.states[media.ID] = interfaces.RunStateQueued
	return nil
}

func (f *fakePipeline) Run(ctx context.Context, media *models.Media) error { return nil }

func (f *fakePipeline) Status(mediaID string) (*interfaces.RunStatus, bool) {
	state, ok := f.states[mediaID]
	if !ok {
		return nil, false
	}
	return &interfaces.RunStatus{MediaID: mediaID, State: state}, true
}

func (f *fakePipeline) ActiveRuns() int { return 0 }

func uploads(names ...string) []interfaces.BatchFileUpload {
	out := make([]interfaces.BatchFileUpload, 0, len(names))
	for _, name := range names {
		out = append(out, interfaces.BatchFileUpload{
			Filename:    name,
			ContentType: "text/plain",
			Size:        4,
			Reader:      bytes.NewReader([]byte("data")),
		})
	}
	return out
}

func TestUploadQueuesEachFile(t *testing.T) {
	media := newFakeMediaService()
	pipeline := newFakePipeline()
	service := NewService(media, pipeline, arbor.NewLogger())

	batch, err := service.Upload(context.Background(), uploads("a.txt", "b.txt"))
	require.NoError(t, err)

	assert.Equal(t, 2, batch.TotalFiles)
	assert.Len(t, pipeline.submitted, 2)
	for _, file := range batch.Files {
		assert.NotEmpty(t, file.MediaID)
		assert.Equal(t, string(interfaces.RunStateQueued), file.Status)
	}
	assert.Equal(t, models.BatchStatusProcessing, batch.Status)
}

func TestUploadRecordsPerFileFailures(t *testing.T) {
	media := newFakeMediaService()
	media.reject["bad.bin"] = true
	pipeline := newFakePipeline()
	service := NewService(media, pipeline, arbor.NewLogger())

	batch, err := service.Upload(context.Background(), uploads("good.txt", "bad.bin"))
	require.NoError(t, err, "one bad file must not fail the batch")

	require.Len(t, batch.Files, 2)
	assert.Equal(t, string(interfaces.RunStateQueued), batch.Files[0].Status)
	assert.Equal(t, models.BatchFileFailed, batch.Files[1].Status)
	assert.Contains(t, batch.Files[1].Error, "unsupported")
	assert.Empty(t, batch.Files[1].MediaID)
	assert.Len(t, pipeline.submitted, 1)
}

func TestUploadRejectsTooManyFiles(t *testing.T) {
	service := NewService(newFakeMediaService(), newFakePipeline(), arbor.NewLogger())

	names := make([]string, MaxBatchFiles+1)
	for i := range names {
		names[i] = fmt.Sprintf("f%d.txt", i)
	}
	_, err := service.Upload(context.Background(), uploads(names...))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum")
}

func TestUploadRejectsEmptyBatch(t *testing.T) {
	service := NewService(newFakeMediaService(), newFakePipeline(), arbor.NewLogger())

	_, err := service.Upload(context.Background(), nil)
	require.Error(t, err)
}

func TestGetReflectsRunStates(t *testing.T) {
	media := newFakeMediaService()
	pipeline := newFakePipeline()
	service := NewService(media, pipeline, arbor.NewLogger())

	batch, err := service.Upload(context.Background(), uploads("a.txt", "b.txt"))
	require.NoError(t, err)

	pipeline.states[batch.Files[0].MediaID] = interfaces.RunStateCompleted
	pipeline.states[batch.Files[1].MediaID] = interfaces.RunStateFailed

	got, ok := service.Get(context.Background(), batch.ID)
	require.True(t, ok)
	assert.Equal(t, string(interfaces.RunStateCompleted), got.Files[0].Status)
	assert.Equal(t, string(interfaces.RunStateFailed), got.Files[1].Status)
	assert.Equal(t, models.BatchStatusCompleted, got.Status)
}

func TestGetFallsBackToMediaRecordAfterRunEviction(t *testing.T) {
	media := newFakeMediaService()
	pipeline := newFakePipeline()
	service := NewService(media, pipeline, arbor.NewLogger())

	batch, err := service.Upload(context.Background(), uploads("a.txt"))
	require.NoError(t, err)

	mediaID := batch.Files[0].MediaID
	delete(pipeline.states, mediaID)
	media.items[mediaID].Status = models.MediaStatusCompleted

	got, ok := service.Get(context.Background(), batch.ID)
	require.True(t, ok)
	assert.Equal(t, string(models.MediaStatusCompleted), got.Files[0].Status)
	assert.Equal(t, models.BatchStatusCompleted, got.Status)
}

func TestGetUnknownBatch(t *testing.T) {
	service := NewService(newFakeMediaService(), newFakePipeline(), arbor.NewLogger())

	_, ok := service.Get(context.Background(), "batch-missing")
	assert.False(t, ok)
}

func TestDeleteRemovesMembers(t *testing.T) {
	media := newFakeMediaService()
	pipeline := newFakePipeline()
	service := NewService(media, pipeline, arbor.NewLogger())

	batch, err := service.Upload(context.Background(), uploads("a.txt", "b.txt"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), batch.ID))
	assert.Len(t, media.deleted, 2)

	_, ok := service.Get(context.Background(), batch.ID)
	assert.False(t, ok)

	assert.Error(t, service.Delete(context.Background(), batch.ID))
}

func TestEvictFinishedKeepsProcessingBatches(t *testing.T) {
	media := newFakeMediaService()
	pipeline := newFakePipeline()
	service := NewService(media, pipeline, arbor.NewLogger())

	finished, err := service.Upload(context.Background(), uploads("a.txt"))
	require.NoError(t, err)
	pipeline.states[finished.Files[0].MediaID] = interfaces.RunStateCompleted

	running, err := service.Upload(context.Background(), uploads("b.txt"))
	require.NoError(t, err)

	// Backdate both so the TTL cutoff is passed
	service.mu.Lock()
	for _, batch := range service.batches {
		batch.CreatedAt = time.Now().Add(-time.Hour)
	}
	service.mu.Unlock()

	evicted := service.EvictFinished(time.Minute)
	assert.Equal(t, 1, evicted)

	_, ok := service.Get(context.Background(), finished.ID)
	assert.False(t, ok)
	_, ok = service.Get(context.Background(), running.ID)
	assert.True(t, ok)
}
