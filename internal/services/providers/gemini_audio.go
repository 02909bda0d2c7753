package providers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

const audioPrompt = `Transcribe this audio, identify its language, and assess its overall sentiment.
Respond with JSON only, no markdown fences:
{"transcript": "full transcript text",
 "language": "en",
 "sentiment": {"label": "positive|neutral|negative", "score": 0.0},
 "segments": [{"start": 0.0, "end": 3.2, "text": "segment text"}]}`

// TranscribeAudio transcribes an audio track and assesses its sentiment
func (p *GeminiProvider) TranscribeAudio(ctx context.Context, data []byte, mimeType string) (*interfaces.Transcription, error) {
	text, err := p.generate(ctx, audioPrompt, data, mimeType)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Transcript string `json:"transcript"`
		Language   string `json:"language"`
		Sentiment  *struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		} `json:"sentiment"`
		Segments []struct {
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Text    string  `json:"text"`
			Speaker string  `json:"speaker"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &parsed); err != nil {
		// Model ignored the format; keep the raw text as the transcript
		p.logger.Warn().Err(err).Msg("Audio response was not valid JSON, using raw text")
		return &interfaces.Transcription{Transcript: strings.TrimSpace(text)}, nil
	}

	result := &interfaces.Transcription{
		Transcript: parsed.Transcript,
		Language:   parsed.Language,
	}
	if parsed.Sentiment != nil {
		result.Sentiment = &models.Sentiment{
			Label: parsed.Sentiment.Label,
			Score: parsed.Sentiment.Score,
		}
	}
	for i, seg := range parsed.Segments {
		result.Segments = append(result.Segments, &models.TranscriptSegment{
			Index:   i,
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
			Speaker: seg.Speaker,
		})
	}

	return result, nil
}
