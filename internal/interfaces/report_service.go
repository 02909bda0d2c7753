package interfaces

import (
	"context"
)

// ReportService renders analysis reports for export
type ReportService interface {
	// Markdown renders the analysis report as Markdown
	Markdown(ctx context.Context, mediaID string) ([]byte, error)

	// PDF renders the analysis report as a PDF document
	PDF(ctx context.Context, mediaID string) ([]byte, error)
}
