package llm

import (
	"context"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicGenerator generates SQL through the Anthropic Messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	cfg    ChatConfig
	logger *zap.Logger
}

// NewAnthropicGenerator creates a new Messages API generator.
func NewAnthropicGenerator(cfg ChatConfig, logger *zap.Logger) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "Anthropic API key not found in environment variables", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		cfg:    cfg,
		logger: logger.Named("anthropic"),
	}, nil
}

// Provider implements SQLGenerator.
func (g *AnthropicGenerator) Provider() string { return "anthropic" }

// GenerateSQL sends one message and cleans the first text block.
func (g *AnthropicGenerator) GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error) {
	prompt := InstructionPrefix + BuildPrompt(naturalQuery, s)
	temperature := g.cfg.Temperature

	start := time.Now()
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(g.cfg.Model),
		System:      SystemMessage,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		g.logger.Error("Generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = g.cfg.Model
		return "", llmErr
	}

	g.logger.Info("Generation request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	text := extractTextFromResponse(resp)
	if text == "" {
		return "", NewError(ErrorTypeResponse, "no text content in response", nil)
	}
	return CleanSQL(text), nil
}

func extractTextFromResponse(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

// Ensure AnthropicGenerator implements SQLGenerator at compile time.
var _ SQLGenerator = (*AnthropicGenerator)(nil)
