package chat

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// memoryStorage is an in-memory StorageManager for tests
type memoryStorage struct {
	media    *memMedia
	results  *memResults
	segments *memSegments
	chats    *memChats
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		media:    &memMedia{items: map[string]*models.Media{}},
		results:  &memResults{},
		segments: &memSegments{},
		chats:    &memChats{},
	}
}

func (m *memoryStorage) MediaStorage() interfaces.MediaStorage     { return m.media }
func (m *memoryStorage) ResultStorage() interfaces.ResultStorage   { return m.results }
func (m *memoryStorage) SegmentStorage() interfaces.SegmentStorage { return m.segments }
func (m *memoryStorage) ChatStorage() interfaces.ChatStorage       { return m.chats }
func (m *memoryStorage) Close() error                              { return nil }

type memMedia struct {
	mu    sync.Mutex
	items map[string]*models.Media
}

func (m *memMedia) Store(ctx context.Context, media *models.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[media.ID] = media
	return nil
}

func (m *memMedia) Get(ctx context.Context, id string) (*models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id], nil
}

func (m *memMedia) List(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Media, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *memMedia) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memMedia) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

type memResults struct {
	mu    sync.Mutex
	items []*models.StageResult
	seq   uint64
}

func (m *memResults) Append(ctx context.Context, result *models.StageResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	result.Seq = m.seq
	if result.Payload == nil {
		result.Payload = map[string]interface{}{}
	}
	m.items = append(m.items, result)
	return nil
}

func (m *memResults) GetByMedia(ctx context.Context, mediaID string) ([]*models.StageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.StageResult
	for _, r := range m.items {
		if r.MediaID == mediaID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memResults) Latest(ctx context.Context, mediaID string) (*models.StageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].MediaID == mediaID {
			return m.items[i], nil
		}
	}
	return nil, nil
}

func (m *memResults) LatestAnalysis(ctx context.Context, mediaID string) (*models.StageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].MediaID == mediaID && !m.items[i].IsError() {
			return m.items[i], nil
		}
	}
	return nil, nil
}

func (m *memResults) DeleteByMedia(ctx context.Context, mediaID string) error { return nil }

func (m *memResults) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

type memSegments struct {
	mu    sync.Mutex
	items []*models.TranscriptSegment
}

func (m *memSegments) AppendBatch(ctx context.Context, segments []*models.TranscriptSegment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, segments...)
	return nil
}

func (m *memSegments) GetByMedia(ctx context.Context, mediaID string) ([]*models.TranscriptSegment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TranscriptSegment
	for _, s := range m.items {
		if s.MediaID == mediaID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSegments) DeleteByMedia(ctx context.Context, mediaID string) error { return nil }

type memChats struct {
	mu    sync.Mutex
	items []*models.ChatMessage
}

func (m *memChats) Append(ctx context.Context, message *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, message)
	return nil
}

func (m *memChats) GetByMedia(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ChatMessage
	for _, c := range m.items {
		if c.MediaID == mediaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memChats) DeleteByMedia(ctx context.Context, mediaID string) error { return nil }

// fakeLLM records the last prompt and returns a canned answer
type fakeLLM struct {
	lastSystem   string
	lastMessages []interfaces.Message
	err          error
}

func (f *fakeLLM) Chat(ctx context.Context, system string, messages []interfaces.Message) (string, error) {
	f.lastSystem = system
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return "the image shows a red bicycle", nil
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetProviderName() string               { return "fake" }

func seedMedia(t *testing.T, storage *memoryStorage, id string, mediaType models.MediaType) {
	t.Helper()
	require.NoError(t, storage.media.Store(context.Background(), &models.Media{
		ID:        id,
		Filename:  "example.jpg",
		MediaType: mediaType,
		Status:    models.MediaStatusCompleted,
	}))
}

func TestBuildContextEmptyWhenNotAnalyzed(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeImage)

	service := NewService(storage, &fakeLLM{}, arbor.NewLogger())

	grounding, err := service.BuildContext(context.Background(), "media-1")
	require.NoError(t, err)
	require.NotNil(t, grounding)
	assert.Empty(t, grounding)
}

func TestBuildContextMergesReservedKeys(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeImage)

	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageImage,
		Payload: map[string]interface{}{
			"caption":  "a red bicycle",
			"filename": "spoofed.png", // payload must not win over the media record
		},
	}))

	service := NewService(storage, &fakeLLM{}, arbor.NewLogger())

	grounding, err := service.BuildContext(context.Background(), "media-1")
	require.NoError(t, err)
	assert.Equal(t, "a red bicycle", grounding["caption"])
	assert.Equal(t, "image", grounding["media_type"])
	assert.Equal(t, "example.jpg", grounding["filename"])
}

func TestBuildContextSkipsErrorRecords(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeAudio)

	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageAudio,
		Payload: map[string]interface{}{"transcript": "hello there"},
	}))
	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageError,
		Payload: map[string]interface{}{"error": "provider timeout"},
	}))

	service := NewService(storage, &fakeLLM{}, arbor.NewLogger())

	grounding, err := service.BuildContext(context.Background(), "media-1")
	require.NoError(t, err)
	assert.Equal(t, "hello there", grounding["transcript"])
	assert.NotContains(t, grounding, "error")
}

func TestBuildContextUnknownMedia(t *testing.T) {
	storage := newMemoryStorage()
	service := NewService(storage, &fakeLLM{}, arbor.NewLogger())

	_, err := service.BuildContext(context.Background(), "missing")
	assert.Error(t, err)
}

func TestAskGroundsPromptOnLatestAnalysis(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeImage)

	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageImage,
		Payload: map[string]interface{}{"caption": "a red bicycle"},
	}))

	llm := &fakeLLM{}
	service := NewService(storage, llm, arbor.NewLogger())

	resp, err := service.Ask(context.Background(), "media-1", "What is in the image?")
	require.NoError(t, err)
	assert.Equal(t, "the image shows a red bicycle", resp.Answer)
	assert.True(t, strings.Contains(llm.lastSystem, "a red bicycle"), "system prompt must carry the analysis context")
	require.NotEmpty(t, llm.lastMessages)
	assert.Equal(t, "What is in the image?", llm.lastMessages[len(llm.lastMessages)-1].Content)

	// Exchange is recorded for follow-ups
	history, err := service.History(context.Background(), "media-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fake", history[0].Provider)
}

func TestAskFallsBackToFactsWhenLLMFails(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeImage)

	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageImage,
		Payload: map[string]interface{}{"caption": "a red bicycle"},
	}))

	llm := &fakeLLM{err: context.DeadlineExceeded}
	service := NewService(storage, llm, arbor.NewLogger())

	resp, err := service.Ask(context.Background(), "media-1", "What is in the image?")
	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "a red bicycle")
	assert.Equal(t, "fallback", resp.Provider)
}

func TestAskReportsContextSources(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeVideo)

	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageVideo,
		Payload: map[string]interface{}{
			"transcript": "hello there",
			"frames":     []interface{}{map[string]interface{}{"caption": "a beach"}},
		},
	}))

	service := NewService(storage, &fakeLLM{}, arbor.NewLogger())

	resp, err := service.Ask(context.Background(), "media-1", "What happens?")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"transcript", "frames"}, resp.Sources)
}

func TestAskReplaysOnlyRecentHistory(t *testing.T) {
	storage := newMemoryStorage()
	seedMedia(t, storage, "media-1", models.MediaTypeImage)

	require.NoError(t, storage.results.Append(context.Background(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageImage,
		Payload: map[string]interface{}{"caption": "a red bicycle"},
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, storage.chats.Append(context.Background(), &models.ChatMessage{
			MediaID:  "media-1",
			Question: "old question",
			Answer:   "old answer",
		}))
	}

	llm := &fakeLLM{}
	service := NewService(storage, llm, arbor.NewLogger())

	_, err := service.Ask(context.Background(), "media-1", "latest question")
	require.NoError(t, err)

	// 3 prior exchanges as user/assistant pairs plus the new question
	assert.Len(t, llm.lastMessages, 7)
}

func TestBuildSystemPromptTruncatesTranscript(t *testing.T) {
	long := strings.Repeat("word ", 200)
	prompt, err := buildSystemPrompt(map[string]interface{}{"transcript": long})
	require.NoError(t, err)
	assert.True(t, len(prompt) < len(promptHeader)+len(long), "transcript must be truncated")
	assert.Contains(t, prompt, "...")
}
