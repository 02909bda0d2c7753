package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// ClaudeService implements LLMService using the Anthropic API
type ClaudeService struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewClaudeService creates a new Claude-backed LLM service
func NewClaudeService(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}

	client := anthropic.NewClient(option.WithAPIKey(config.APIKey))

	maxTokens := int64(config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	logger.Info().Str("model", config.Model).Msg("Claude LLM service initialized")

	return &ClaudeService{
		client:      client,
		model:       config.Model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 5*time.Minute),
		logger:      logger,
	}, nil
}

// Chat generates a completion from the conversation history
func (s *ClaudeService) Chat(ctx context.Context, system string, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   s.maxTokens,
		Temperature: anthropic.Float(float64(s.temperature)),
		Messages:    convertMessages(messages),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude chat failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	return response.String(), nil
}

func convertMessages(messages []interfaces.Message) []anthropic.MessageParam {
	converted := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			converted = append(converted, anthropic.NewAssistantMessage(block))
		} else {
			converted = append(converted, anthropic.NewUserMessage(block))
		}
	}
	return converted
}

// HealthCheck verifies the service is configured
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	if s.model == "" {
		return fmt.Errorf("claude model not configured")
	}
	return nil
}

// GetProviderName returns the provider identifier
func (s *ClaudeService) GetProviderName() string {
	return "claude"
}
