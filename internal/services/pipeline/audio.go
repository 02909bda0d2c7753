package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// analyzeAudio runs the audio pipeline: one provider pass for transcript,
// sentiment, and timed segments
func (s *Service) analyzeAudio(ctx context.Context, media *models.Media, reporter *progressReporter) (*runOutcome, error) {
	reporter.report("audio", 60, "Transcribing audio")

	transcription, duration, err := s.transcribeFile(ctx, media.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("audio analysis failed: %w", err)
	}

	analysis := &models.AudioAnalysis{
		Transcript: transcription.Transcript,
		Language:   transcription.Language,
		Sentiment:  transcription.Sentiment,
		WordCount:  len(strings.Fields(transcription.Transcript)),
		Duration:   duration,
		MediaType:  string(media.MediaType),
		Filename:   media.Filename,
	}

	payload, err := models.ToPayload(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	// Segments become independent rows keyed to the media item
	segments := transcription.Segments
	for _, segment := range segments {
		segment.MediaID = media.ID
	}

	return &runOutcome{
		stage:    models.StageAudio,
		payload:  payload,
		segments: segments,
	}, nil
}

// transcribeFile sends an audio file to the audio provider, probing its
// duration when ffprobe is available
func (s *Service) transcribeFile(ctx context.Context, path string) (*interfaces.Transcription, float64, error) {
	if s.audio == nil {
		return nil, 0, fmt.Errorf("audio provider not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read audio: %w", err)
	}

	var duration float64
	if s.tools != nil {
		if probe, err := s.tools.Probe(ctx, path); err == nil {
			duration = probe.Duration
		}
	}

	mime := mimetype.Detect(data).String()
	transcription, err := s.audio.TranscribeAudio(ctx, data, mime)
	if err != nil {
		return nil, 0, err
	}

	return transcription, duration, nil
}
