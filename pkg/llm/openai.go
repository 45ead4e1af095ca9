package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// ChatConfig holds configuration shared by the chat-completion generators.
type ChatConfig struct {
	Endpoint    string // Optional base URL override, e.g. a local OpenAI-compatible server
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
}

// OpenAIGenerator generates SQL through an OpenAI-compatible chat endpoint.
type OpenAIGenerator struct {
	client   *openai.Client
	endpoint string
	cfg      ChatConfig
	logger   *zap.Logger
}

// NewOpenAIGenerator creates a new OpenAI-compatible generator.
func NewOpenAIGenerator(cfg ChatConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" && cfg.Endpoint == "" {
		return nil, NewError(ErrorTypeAuth, "OpenAI API key not found in environment variables", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: clientConfig.BaseURL,
		cfg:      cfg,
		logger:   logger.Named("openai"),
	}, nil
}

// Provider implements SQLGenerator.
func (g *OpenAIGenerator) Provider() string { return "openai" }

// GenerateSQL sends one chat completion and cleans the first choice.
func (g *OpenAIGenerator) GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemMessage},
		{Role: openai.ChatMessageRoleUser, Content: InstructionPrefix + BuildPrompt(naturalQuery, s)},
	}

	g.logger.Debug("Generation request",
		zap.String("model", g.cfg.Model),
		zap.Int("prompt_len", len(naturalQuery)))

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		g.logger.Error("Generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = g.cfg.Model
		llmErr.Endpoint = g.endpoint
		return "", llmErr
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeResponse, "no choices in response", nil)
	}

	g.logger.Info("Generation request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", NewError(ErrorTypeResponse, fmt.Sprintf("empty completion (finish_reason=%s)", resp.Choices[0].FinishReason), nil)
	}
	return CleanSQL(content), nil
}

// Ensure OpenAIGenerator implements SQLGenerator at compile time.
var _ SQLGenerator = (*OpenAIGenerator)(nil)
