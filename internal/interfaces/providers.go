package interfaces

import (
	"context"

	"github.com/ternarybob/mediascope/internal/models"
)

// ImageDescription is the structured output of a vision pass over one image
type ImageDescription struct {
	Caption string
	Objects []string
}

// VisionProvider analyzes still images (uploaded images and extracted
// video frames)
type VisionProvider interface {
	DescribeImage(ctx context.Context, data []byte, mimeType string) (*ImageDescription, error)
}

// Transcription is the structured output of an audio analysis pass
type Transcription struct {
	Transcript string
	Language   string
	Sentiment  *models.Sentiment
	Segments   []*models.TranscriptSegment
}

// AudioProvider transcribes and analyzes audio tracks
type AudioProvider interface {
	TranscribeAudio(ctx context.Context, data []byte, mimeType string) (*Transcription, error)
}
