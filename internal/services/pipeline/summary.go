package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// buildVisualSummary joins the distinct frame captions in first-occurrence
// order, capped at max captions. Repeated captions from a static scene
// collapse to one.
func buildVisualSummary(frames []models.FrameAnalysis, max int) string {
	if max <= 0 {
		max = 5
	}

	seen := make(map[string]struct{}, len(frames))
	captions := make([]string, 0, max)
	for _, frame := range frames {
		caption := strings.TrimSpace(frame.Caption)
		if caption == "" {
			continue
		}
		if _, ok := seen[caption]; ok {
			continue
		}
		seen[caption] = struct{}{}
		captions = append(captions, caption)
		if len(captions) >= max {
			break
		}
	}

	return strings.Join(captions, " ")
}

const summaryPrompt = `Write a short 2-3 sentence summary of this media analysis for a person deciding whether to look closer. Plain prose, no preamble.

Analysis:
`

// summarize asks the LLM for a short free-text summary of the payload.
// Summary failures never abort a successful run; the fallback string is
// used instead.
func (s *Service) summarize(ctx context.Context, payload map[string]interface{}) string {
	if s.llm == nil {
		return models.SummaryFallback
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return models.SummaryFallback
	}

	summary, err := s.llm.Chat(ctx, "", []interfaces.Message{
		{Role: "user", Content: summaryPrompt + string(data)},
	})
	if err != nil || strings.TrimSpace(summary) == "" {
		s.logger.Warn().Err(err).Msg("Summary generation failed, using fallback")
		return models.SummaryFallback
	}

	return strings.TrimSpace(summary)
}
