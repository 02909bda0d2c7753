package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
)

// NewLLMService creates the text-generation service named by configuration.
// When the preferred provider has no API key, the other provider is used as
// a fallback before giving up.
func NewLLMService(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = "claude"
	}

	logger.Info().Str("provider", provider).Msg("Initializing LLM service")

	switch provider {
	case "claude":
		service, err := NewClaudeService(&cfg.Claude, logger)
		if err == nil {
			return service, nil
		}
		logger.Warn().Err(err).Msg("Claude unavailable, trying Gemini fallback")
		return NewGeminiService(ctx, &cfg.Gemini, logger)

	case "gemini":
		service, err := NewGeminiService(ctx, &cfg.Gemini, logger)
		if err == nil {
			return service, nil
		}
		logger.Warn().Err(err).Msg("Gemini unavailable, trying Claude fallback")
		return NewClaudeService(&cfg.Claude, logger)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
