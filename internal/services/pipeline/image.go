package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/mediascope/internal/models"
	"github.com/ternarybob/mediascope/internal/services/providers"
)

// analyzeImage runs the image pipeline: one vision pass for caption and
// objects, plus local color extraction
func (s *Service) analyzeImage(ctx context.Context, media *models.Media, reporter *progressReporter) (*runOutcome, error) {
	if s.vision == nil {
		return nil, fmt.Errorf("vision provider not configured")
	}

	data, err := os.ReadFile(media.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	reporter.report("image", 20, "Analyzing image")

	mime := mimetype.Detect(data).String()
	description, err := s.vision.DescribeImage(ctx, data, mime)
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}

	analysis := &models.ImageAnalysis{
		Caption:   description.Caption,
		Objects:   description.Objects,
		MediaType: string(media.MediaType),
		Filename:  media.Filename,
	}

	// Color extraction is local and cheap; its failure does not matter
	if colors, width, height, err := providers.DominantColors(data, 5); err == nil {
		analysis.Colors = colors
		analysis.Width = width
		analysis.Height = height
		analysis.AspectRatio = aspectRatio(width, height)
	} else {
		s.logger.Debug().Err(err).Str("media_id", media.ID).Msg("Color extraction failed")
	}

	payload, err := models.ToPayload(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	return &runOutcome{stage: models.StageImage, payload: payload}, nil
}

func aspectRatio(width, height int) float64 {
	if height == 0 {
		return 0
	}
	return math.Round(float64(width)/float64(height)*100) / 100
}
