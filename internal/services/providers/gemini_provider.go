package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiProvider wraps the Gemini multimodal API for vision and audio
// analysis. It implements both VisionProvider and AudioProvider.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewGeminiProvider creates a new Gemini multimodal provider
func NewGeminiProvider(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info().Str("model", config.Model).Msg("Gemini multimodal provider initialized")

	return &GeminiProvider{
		client:      client,
		model:       config.Model,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 5*time.Minute),
		logger:      logger,
	}, nil
}

// generate sends a prompt plus one inline media part and returns the text
// response
func (p *GeminiProvider) generate(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mimeType),
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{content}, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	return response.String(), nil
}

var _ interfaces.VisionProvider = (*GeminiProvider)(nil)
var _ interfaces.AudioProvider = (*GeminiProvider)(nil)
