package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/mediascope/internal/models"
)

// analyzeVideo runs the composite video pipeline: probe, audio track,
// sampled frames, visual summary. The audio pass may fail without
// aborting the run; frame analysis tolerates per-frame failures.
func (s *Service) analyzeVideo(ctx context.Context, media *models.Media, reporter *progressReporter) (*runOutcome, error) {
	if s.vision == nil {
		return nil, fmt.Errorf("vision provider not configured")
	}
	if s.tools == nil {
		return nil, fmt.Errorf("media toolchain not configured")
	}

	workDir := s.runDir(media.ID)
	defer os.RemoveAll(workDir)

	reporter.report("metadata", 20, "Extracting video metadata")

	probe, err := s.tools.Probe(ctx, media.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("video probe failed: %w", err)
	}

	analysis := &models.VideoAnalysis{
		Duration:    probe.Duration,
		Format:      probe.Format,
		Width:       probe.Width,
		Height:      probe.Height,
		AspectRatio: aspectRatio(probe.Width, probe.Height),
		MediaType:   string(media.MediaType),
		Filename:    media.Filename,
	}

	// Audio track failures are embedded, never fatal; a silent screen
	// recording is still a valid video
	reporter.report("audio", 60, "Analyzing audio track")
	var segments []*models.TranscriptSegment
	var audioErr error
	if probe.HasAudio {
		segments, audioErr = s.analyzeVideoAudio(ctx, media, workDir, analysis)
	}

	reporter.report("frames", 70, "Analyzing video frames")
	if err := s.analyzeVideoFrames(ctx, media, workDir, analysis); err != nil {
		return nil, err
	}

	payload, err := models.ToPayload(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	if audioErr != nil {
		payload["audio"] = map[string]interface{}{"error": audioErr.Error()}
	}

	return &runOutcome{
		stage:    models.StageVideo,
		payload:  payload,
		segments: segments,
	}, nil
}

// analyzeVideoAudio extracts the audio track and runs the audio
// sub-pipeline, filling transcript fields on the analysis
func (s *Service) analyzeVideoAudio(ctx context.Context, media *models.Media, workDir string, analysis *models.VideoAnalysis) ([]*models.TranscriptSegment, error) {
	audioPath, err := s.tools.ExtractAudio(ctx, media.StoragePath, workDir)
	if err != nil {
		s.logger.Warn().Err(err).Str("media_id", media.ID).Msg("Audio extraction failed, continuing without transcript")
		return nil, err
	}

	transcription, _, err := s.transcribeFile(ctx, audioPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("media_id", media.ID).Msg("Audio transcription failed, continuing without transcript")
		return nil, err
	}

	analysis.Transcript = transcription.Transcript
	analysis.Language = transcription.Language
	analysis.Sentiment = transcription.Sentiment

	segments := transcription.Segments
	for _, segment := range segments {
		segment.MediaID = media.ID
	}
	return segments, nil
}

// analyzeVideoFrames samples frames at an adaptive rate and captions a
// capped prefix of them. A frame whose vision pass fails is skipped.
func (s *Service) analyzeVideoFrames(ctx context.Context, media *models.Media, workDir string, analysis *models.VideoAnalysis) error {
	fps := s.config.Pipeline.FrameRate
	if fps <= 0 {
		fps = 1.0
	}
	// Long videos sample at half rate to bound the frame count
	if analysis.Duration > s.config.Pipeline.LongVideoSeconds {
		fps = fps / 2
	}

	framePaths, err := s.tools.ExtractFrames(ctx, media.StoragePath, filepath.Join(workDir, "frames"), fps)
	if err != nil {
		return fmt.Errorf("frame extraction failed: %w", err)
	}

	maxFrames := s.config.Pipeline.MaxFrames
	if maxFrames <= 0 {
		maxFrames = 10
	}
	if len(framePaths) > maxFrames {
		framePaths = framePaths[:maxFrames]
	}

	for i, framePath := range framePaths {
		data, err := os.ReadFile(framePath)
		if err != nil {
			s.logger.Warn().Err(err).Str("frame", framePath).Msg("Skipping unreadable frame")
			continue
		}

		description, err := s.vision.DescribeImage(ctx, data, mimetype.Detect(data).String())
		if err != nil {
			s.logger.Warn().Err(err).Int("frame", i).Str("media_id", media.ID).Msg("Skipping failed frame")
			continue
		}

		analysis.Frames = append(analysis.Frames, models.FrameAnalysis{
			Index:     i,
			Timestamp: float64(i) / fps,
			Caption:   description.Caption,
			Objects:   description.Objects,
		})
	}

	analysis.FrameCount = len(analysis.Frames)
	analysis.VisualSummary = buildVisualSummary(analysis.Frames, s.config.Pipeline.SummaryCaptions)

	return nil
}
