package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/mediascope/internal/models"
)

func TestBuildVisualSummaryDeduplicates(t *testing.T) {
	frames := []models.FrameAnalysis{
		{Caption: "a dog runs on grass."},
		{Caption: "a dog runs on grass."},
		{Caption: "the dog catches a ball."},
		{Caption: "a dog runs on grass."},
	}

	summary := buildVisualSummary(frames, 5)
	assert.Equal(t, "a dog runs on grass. the dog catches a ball.", summary)
}

func TestBuildVisualSummaryPreservesFirstOccurrenceOrder(t *testing.T) {
	frames := []models.FrameAnalysis{
		{Caption: "third"}, {Caption: "first"}, {Caption: "third"}, {Caption: "second"},
	}

	summary := buildVisualSummary(frames, 5)
	assert.Equal(t, "third first second", summary)
}

func TestBuildVisualSummaryCapsCaptions(t *testing.T) {
	frames := []models.FrameAnalysis{
		{Caption: "one"}, {Caption: "two"}, {Caption: "three"},
	}

	summary := buildVisualSummary(frames, 2)
	assert.Equal(t, "one two", summary)
}

func TestBuildVisualSummarySkipsEmptyCaptions(t *testing.T) {
	frames := []models.FrameAnalysis{
		{Caption: ""}, {Caption: "  "}, {Caption: "only one"},
	}

	summary := buildVisualSummary(frames, 5)
	assert.Equal(t, "only one", summary)
}

func TestBuildVisualSummaryNoFrames(t *testing.T) {
	assert.Equal(t, "", buildVisualSummary(nil, 5))
}

func TestDecodeTextLatin1Fallback(t *testing.T) {
	// "café" in Latin-1: the 0xE9 byte alone is invalid UTF-8
	data := []byte{'c', 'a', 'f', 0xE9}
	assert.Equal(t, "café", decodeText(data))

	// Valid UTF-8 passes through untouched
	assert.Equal(t, "café", decodeText([]byte("café")))
}
