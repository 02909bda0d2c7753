package llm

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

// GeminiService implements LLMService using the Gemini API
type GeminiService struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewGeminiService creates a new Gemini-backed LLM service
func NewGeminiService(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
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

	logger.Info().Str("model", config.Model).Msg("Gemini LLM service initialized")

	return &GeminiService{
		client:      client,
		model:       config.Model,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 5*time.Minute),
		logger:      logger,
	}, nil
}

// Chat generates a completion from the conversation history
func (s *GeminiService) Chat(ctx context.Context, system string, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.temperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
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

// HealthCheck verifies the service is configured
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("gemini client not initialized")
	}
	return nil
}

// GetProviderName returns the provider identifier
func (s *GeminiService) GetProviderName() string {
	return "gemini"
}
