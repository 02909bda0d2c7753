package report

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// Service renders analysis reports as Markdown or PDF
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Markdown renders the analysis report as Markdown
func (s *Service) Markdown(ctx context.Context, mediaID string) ([]byte, error) {
	media, err := s.storage.MediaStorage().Get(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, fmt.Errorf("media %s not found", mediaID)
	}

	latest, err := s.storage.ResultStorage().LatestAnalysis(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	segments, err := s.storage.SegmentStorage().GetByMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	chats, err := s.storage.ChatStorage().GetByMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	return renderMarkdown(media, latest, segments, chats), nil
}

// PDF renders the analysis report as a PDF document
func (s *Service) PDF(ctx context.Context, mediaID string) ([]byte, error) {
	markdown, err := s.Markdown(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	pdf, err := markdownToPDF(markdown)
	if err != nil {
		s.logger.Error().Err(err).Str("media_id", mediaID).Msg("PDF generation failed")
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	s.logger.Debug().Str("media_id", mediaID).Int("pdf_size", len(pdf)).Msg("PDF report generated")
	return pdf, nil
}
