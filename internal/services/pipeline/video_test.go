package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
	"github.com/ternarybob/mediascope/internal/services/events"
)

// fakeToolchain produces synthetic probe results and frame files without
// shelling out
type fakeToolchain struct {
	probe      *interfaces.VideoProbe
	audioErr   error
	frameCount int
}

func (f *fakeToolchain) Probe(ctx context.Context, path string) (*interfaces.VideoProbe, error) {
	if f.probe == nil {
		return nil, errors.New("probe failed")
	}
	return f.probe, nil
}

func (f *fakeToolchain) ExtractAudio(ctx context.Context, videoPath, workDir string) (string, error) {
	if f.audioErr != nil {
		return "", f.audioErr
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(workDir, "audio.wav")
	return path, os.WriteFile(path, []byte("fake-audio"), 0644)
}

func (f *fakeToolchain) ExtractFrames(ctx context.Context, videoPath, framesDir string, fps float64) ([]string, error) {
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, f.frameCount)
	for i := 0; i < f.frameCount; i++ {
		path := filepath.Join(framesDir, fmt.Sprintf("frame_%04d.jpg", i+1))
		if err := os.WriteFile(path, []byte("fake-frame"), 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// flakyVision fails every second caption request
type flakyVision struct {
	calls int
}

func (f *flakyVision) DescribeImage(ctx context.Context, data []byte, mimeType string) (*interfaces.ImageDescription, error) {
	f.calls++
	if f.calls%2 == 0 {
		return nil, errors.New("vision unavailable")
	}
	return &interfaces.ImageDescription{Caption: fmt.Sprintf("scene %d", f.calls)}, nil
}

func newVideoTestService(t *testing.T, storage interfaces.StorageManager, notifier interfaces.Notifier, vision interfaces.VisionProvider, audio interfaces.AudioProvider, tools interfaces.MediaToolchain) *Service {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Upload.Dir = t.TempDir()
	return NewService(cfg, storage, notifier, vision, audio, nil, tools, arbor.NewLogger())
}

func videoTestMedia(t *testing.T) *models.Media {
	t.Helper()
	return &models.Media{
		ID:          "media-1",
		Filename:    "clip.mp4",
		MediaType:   models.MediaTypeVideo,
		StoragePath: writeTempFile(t, "clip.mp4", []byte("fake-mp4-bytes")),
	}
}

func TestRunVideoPipelineCapsAnalyzedFrames(t *testing.T) {
	storage := newMemStorage()
	notifier := events.NewNotifier(arbor.NewLogger(), 0)
	tools := &fakeToolchain{
		probe:      &interfaces.VideoProbe{Duration: 12, Format: "mp4", Width: 1920, Height: 1080},
		frameCount: 15,
	}
	service := newVideoTestService(t, storage, notifier, &fakeVision{}, nil, tools)

	media := videoTestMedia(t)
	require.NoError(t, storage.media.Store(context.Background(), media))

	require.NoError(t, service.Run(context.Background(), media))

	record, err := storage.results.Latest(context.Background(), "media-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.StageVideo, record.Stage)
	assert.EqualValues(t, 10, record.Payload["frame_count"], "at most ten frames are analyzed")
	assert.EqualValues(t, 1920, record.Payload["width"])
	assert.InDelta(t, 1.78, record.Payload["aspect_ratio"].(float64), 0.01)
}

func TestRunVideoPipelineSkipsFailedFrames(t *testing.T) {
	storage := newMemStorage()
	notifier := events.NewNotifier(arbor.NewLogger(), 0)
	tools := &fakeToolchain{
		probe:      &interfaces.VideoProbe{Duration: 4, Format: "mp4", Width: 640, Height: 480},
		frameCount: 6,
	}
	service := newVideoTestService(t, storage, notifier, &flakyVision{}, nil, tools)

	media := videoTestMedia(t)
	require.NoError(t, storage.media.Store(context.Background(), media))

	require.NoError(t, service.Run(context.Background(), media))

	record, err := storage.results.Latest(context.Background(), "media-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.StageVideo, record.Stage)

	// Half the caption calls fail; those frames are skipped, not fatal
	assert.EqualValues(t, 3, record.Payload["frame_count"])
	assert.NotEmpty(t, record.Payload["visual_summary"])
}

func TestRunVideoPipelineEmbedsAudioFailure(t *testing.T) {
	storage := newMemStorage()
	notifier := events.NewNotifier(arbor.NewLogger(), 0)
	tools := &fakeToolchain{
		probe:      &interfaces.VideoProbe{Duration: 8, Format: "mp4", Width: 640, Height: 480, HasAudio: true},
		audioErr:   errors.New("no decodable audio stream"),
		frameCount: 2,
	}
	service := newVideoTestService(t, storage, notifier, &fakeVision{}, &fakeAudio{}, tools)

	media := videoTestMedia(t)
	require.NoError(t, storage.media.Store(context.Background(), media))

	require.NoError(t, service.Run(context.Background(), media))

	record, err := storage.results.Latest(context.Background(), "media-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.StageVideo, record.Stage)

	audio, ok := record.Payload["audio"].(map[string]interface{})
	require.True(t, ok, "audio failure must be embedded as a sub-result")
	assert.Contains(t, audio["error"], "no decodable audio stream")

	segments, segErr := storage.segments.GetByMedia(context.Background(), "media-1")
	require.NoError(t, segErr)
	assert.Empty(t, segments)
}

func TestRunVideoPipelineTranscribesAudioTrack(t *testing.T) {
	storage := newMemStorage()
	notifier := events.NewNotifier(arbor.NewLogger(), 0)
	tools := &fakeToolchain{
		probe:      &interfaces.VideoProbe{Duration: 8, Format: "mp4", Width: 640, Height: 480, HasAudio: true},
		frameCount: 2,
	}
	service := newVideoTestService(t, storage, notifier, &fakeVision{}, &fakeAudio{}, tools)

	media := videoTestMedia(t)
	require.NoError(t, storage.media.Store(context.Background(), media))

	require.NoError(t, service.Run(context.Background(), media))

	record, err := storage.results.Latest(context.Background(), "media-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "hello there", record.Payload["transcript"])
	assert.Nil(t, record.Payload["audio"])

	segments, segErr := storage.segments.GetByMedia(context.Background(), "media-1")
	require.NoError(t, segErr)
	require.Len(t, segments, 1)
	assert.Equal(t, "media-1", segments[0].MediaID)
}
