package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/mediascope/internal/models"
)

// analyzeText runs the text pipeline: the raw content passes through as
// the transcript with basic counts. Files that are not valid UTF-8 are
// reinterpreted as Latin-1 so no upload fails on encoding alone.
func (s *Service) analyzeText(ctx context.Context, media *models.Media, reporter *progressReporter) (*runOutcome, error) {
	reporter.report("text", 20, "Reading text content")

	data, err := os.ReadFile(media.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}

	content := decodeText(data)

	analysis := &models.TextAnalysis{
		Transcript: content,
		WordCount:  len(strings.Fields(content)),
		CharCount:  utf8.RuneCountInString(content),
		MediaType:  string(media.MediaType),
		Filename:   media.Filename,
	}

	payload, err := models.ToPayload(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	return &runOutcome{stage: models.StageText, payload: payload}, nil
}

// decodeText returns the content as UTF-8, falling back to a Latin-1
// reinterpretation for byte sequences that are not valid UTF-8
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
