package llm

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiGenerator generates SQL through the Gemini API. A client is opened
// per call and closed when the call returns.
type GeminiGenerator struct {
	cfg    ChatConfig
	logger *zap.Logger
}

// NewGeminiGenerator creates a new Gemini generator.
func NewGeminiGenerator(cfg ChatConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "Gemini API key not found in environment variables", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	return &GeminiGenerator{cfg: cfg, logger: logger.Named("gemini")}, nil
}

// Provider implements SQLGenerator.
func (g *GeminiGenerator) Provider() string { return "gemini" }

// GenerateSQL sends one GenerateContent request.
func (g *GeminiGenerator) GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error) {
	opts := []option.ClientOption{option.WithAPIKey(g.cfg.APIKey)}
	if g.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", NewError(ErrorTypeEndpoint, "failed to create Gemini client", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			g.logger.Warn("Error closing Gemini client", zap.Error(err))
		}
	}()

	model := client.GenerativeModel(g.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemMessage)},
	}
	temp := g.cfg.Temperature
	maxTokens := int32(g.cfg.MaxTokens)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(InstructionPrefix+BuildPrompt(naturalQuery, s)))
	if err != nil {
		g.logger.Error("Generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = g.cfg.Model
		return "", llmErr
	}

	text := geminiText(resp)
	if text == "" {
		return "", NewError(ErrorTypeResponse, "Gemini response was empty or had no text parts", nil)
	}

	g.logger.Info("Generation request completed", zap.Duration("elapsed", time.Since(start)))
	return CleanSQL(text), nil
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// Ensure GeminiGenerator implements SQLGenerator at compile time.
var _ SQLGenerator = (*GeminiGenerator)(nil)
