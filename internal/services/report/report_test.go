package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/mediascope/internal/models"
)

func sampleMedia() *models.Media {
	return &models.Media{
		ID:        "media-1",
		Filename:  "clip.mp4",
		MediaType: models.MediaTypeVideo,
		Status:    models.MediaStatusCompleted,
		SizeBytes: 2048,
		CreatedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestRenderMarkdownFullReport(t *testing.T) {
	latest := &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageVideo,
		Payload: map[string]interface{}{
			"summary":        "A dog plays fetch in a park.",
			"visual_summary": "a dog runs on grass. the dog catches a ball.",
			"duration":       float64(42),
			"transcript":     "good catch!",
		},
	}
	segments := []*models.TranscriptSegment{
		{MediaID: "media-1", Start: 0, End: 1.5, Text: "good catch!"},
	}
	chats := []*models.ChatMessage{
		{MediaID: "media-1", Question: "What animal appears?", Answer: "A dog."},
	}

	out := string(renderMarkdown(sampleMedia(), latest, segments, chats))

	assert.Contains(t, out, "# Analysis Report: clip.mp4")
	assert.Contains(t, out, "A dog plays fetch in a park.")
	assert.Contains(t, out, "visual_summary")
	assert.Contains(t, out, "## Transcript Segments")
	assert.Contains(t, out, "good catch!")
	assert.Contains(t, out, "**Q:** What animal appears?")

	// Duration renders as an integer, not 42.00
	assert.Contains(t, out, "| duration | 42 |")
}

func TestRenderMarkdownNoAnalysis(t *testing.T) {
	out := string(renderMarkdown(sampleMedia(), nil, nil, nil))
	assert.Contains(t, out, "No analysis available yet.")
	assert.NotContains(t, out, "## Analysis Details")
}

func TestRenderMarkdownEscapesTableCells(t *testing.T) {
	latest := &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageText,
		Payload: map[string]interface{}{
			"transcript": "a | b\nsecond line",
		},
	}

	out := string(renderMarkdown(sampleMedia(), latest, nil, nil))
	assert.Contains(t, out, `a \| b second line`)
}

func TestMarkdownToPDF(t *testing.T) {
	markdown := renderMarkdown(sampleMedia(), &models.StageResult{
		MediaID: "media-1",
		Stage:   models.StageVideo,
		Payload: map[string]interface{}{
			"summary":  "A short clip.",
			"duration": float64(12.5),
		},
	}, nil, nil)

	pdf, err := markdownToPDF(markdown)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"), "output must be a PDF document")
}
