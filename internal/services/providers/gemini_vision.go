package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/mediascope/internal/interfaces"
)

const visionPrompt = `Describe this image. Respond with JSON only, no markdown fences:
{"caption": "one sentence describing the image", "objects": ["object1", "object2"]}`

// DescribeImage captions an image and lists the prominent objects in it
func (p *GeminiProvider) DescribeImage(ctx context.Context, data []byte, mimeType string) (*interfaces.ImageDescription, error) {
	text, err := p.generate(ctx, visionPrompt, data, mimeType)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Caption string   `json:"caption"`
		Objects []string `json:"objects"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &parsed); err != nil {
		// Model ignored the format; treat the whole response as the caption
		p.logger.Warn().Err(err).Msg("Vision response was not valid JSON, using raw text")
		return &interfaces.ImageDescription{Caption: strings.TrimSpace(text)}, nil
	}

	if parsed.Caption == "" {
		return nil, fmt.Errorf("vision response missing caption")
	}

	return &interfaces.ImageDescription{
		Caption: parsed.Caption,
		Objects: parsed.Objects,
	}, nil
}

// stripJSONFences removes markdown code fences models sometimes wrap
// around JSON output
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
