package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
)

// NewGenerator creates the generator selected by cfg.Provider. The
// configured endpoint is only forwarded to chat providers when it was
// changed from the Eden AI default.
func NewGenerator(cfg config.GenerationConfig, logger *zap.Logger) (SQLGenerator, error) {
	chat := ChatConfig{
		Model:       cfg.Model,
		APIKey:      cfg.APIKey(),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	if cfg.Endpoint != config.DefaultGenerationEndpoint {
		chat.Endpoint = cfg.Endpoint
	}

	switch cfg.Provider {
	case config.ProviderEdenAI:
		return NewEdenClient(EdenConfig{
			Endpoint:     cfg.Endpoint,
			APIKey:       cfg.APIKey(),
			ProviderName: cfg.ProviderName,
			Temperature:  cfg.Temperature,
			MaxTokens:    cfg.MaxTokens,
			Timeout:      cfg.Timeout,
		}, logger)
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(chat, logger)
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(chat, logger)
	case config.ProviderGemini:
		return NewGeminiGenerator(chat, logger)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
