package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/jsonutil"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// DefaultTimeout bounds a generation call when none is configured.
const DefaultTimeout = 30 * time.Second

// EdenConfig holds configuration for the Eden AI text-generation client.
type EdenConfig struct {
	Endpoint     string  // e.g. "https://api.edenai.run/v2/text/generation"
	APIKey       string  // sent as a bearer token
	ProviderName string  // upstream engine, also the response key, e.g. "google"
	Temperature  float32 // sampling temperature
	MaxTokens    int     // completion token cap
	Timeout      time.Duration
}

// EdenClient calls the Eden AI text-generation endpoint.
type EdenClient struct {
	httpClient *http.Client
	cfg        EdenConfig
	logger     *zap.Logger
}

type edenRequest struct {
	Providers   string  `json:"providers"`
	Text        string  `json:"text"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// edenProviderResult is one entry of the response object keyed by provider.
type edenProviderResult struct {
	Status        string          `json:"status"`
	GeneratedText json.RawMessage `json:"generated_text"`
	Error         json.RawMessage `json:"error"`
}

// NewEdenClient creates a new Eden AI client.
func NewEdenClient(cfg EdenConfig, logger *zap.Logger) (*EdenClient, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "EDEN AI API key not found in environment variables", nil)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.ProviderName == "" {
		cfg.ProviderName = "google"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &EdenClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.Named("edenai"),
	}, nil
}

// Provider implements SQLGenerator.
func (c *EdenClient) Provider() string { return "edenai" }

// GenerateSQL posts the prompt and returns the cleaned generated text.
func (c *EdenClient) GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error) {
	payload, err := json.Marshal(edenRequest{
		Providers:   c.cfg.ProviderName,
		Text:        InstructionPrefix + BuildPrompt(naturalQuery, s),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Generation request",
		zap.String("provider", c.cfg.ProviderName),
		zap.Int("prompt_len", len(naturalQuery)),
		zap.Bool("with_schema", s != nil))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			logging.Error(err))
		llmErr := ClassifyError(fmt.Errorf("API request failed: %w", err))
		llmErr.Endpoint = c.cfg.Endpoint
		return "", llmErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(ErrorTypeResponse, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Eden AI returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.TruncateString(string(body), 500)))
		llmErr := ClassifyError(fmt.Errorf("API request failed: status %d: %s", resp.StatusCode,
			logging.TruncateString(string(body), 200)))
		llmErr.StatusCode = resp.StatusCode
		llmErr.Endpoint = c.cfg.Endpoint
		return "", llmErr
	}

	text, err := c.extractText(body)
	if err != nil {
		return "", err
	}

	c.logger.Info("Generation request completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))

	return CleanSQL(text), nil
}

// extractText reads result[provider].generated_text.
func (c *EdenClient) extractText(body []byte) (string, error) {
	var response map[string]edenProviderResult
	if err := json.Unmarshal(body, &response); err != nil {
		return "", NewError(ErrorTypeResponse, "Unexpected API response format", err)
	}

	result, ok := response[c.cfg.ProviderName]
	if !ok {
		return "", NewError(ErrorTypeResponse,
			fmt.Sprintf("Unexpected API response format: missing %q", c.cfg.ProviderName), nil)
	}

	if result.Status == "fail" {
		return "", NewError(ErrorTypeResponse,
			"provider failed: "+jsonutil.FlexibleStringValue(result.Error), nil)
	}

	if len(result.GeneratedText) == 0 {
		return "", NewError(ErrorTypeResponse, "Unexpected API response format: missing \"generated_text\"", nil)
	}

	return jsonutil.FlexibleStringValue(result.GeneratedText), nil
}

// Ensure EdenClient implements SQLGenerator at compile time.
var _ SQLGenerator = (*EdenClient)(nil)
