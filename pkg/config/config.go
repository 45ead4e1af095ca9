package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "config.yaml"

// DefaultGenerationEndpoint is the Eden AI text-generation URL.
const DefaultGenerationEndpoint = "https://api.edenai.run/v2/text/generation"

// Generation providers understood by the llm package.
const (
	ProviderEdenAI    = "edenai"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds all configuration for sqlsage.
// Values come from an optional YAML file and environment variables; a .env
// file in the working directory is loaded into the environment first.
// Environment variables override YAML values. Secrets are env-only.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8501"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Execution connection used by the playground
	Database DatabaseConfig `yaml:"database"`

	// Text-to-SQL generation endpoint
	Generation GenerationConfig `yaml:"generation"`

	// Persisted JSON documents
	Storage StorageConfig `yaml:"storage"`

	Playground PlaygroundConfig `yaml:"playground"`

	// CredentialsKey seals connection-profile passwords at rest.
	// Base64 32-byte key or passphrase. Profiles keep plaintext passwords when unset.
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"` // Secret - not in YAML
}

// DatabaseConfig describes the execution connection. The PG* variables are
// shared by every dialect; DSN overrides them when set (required for sqlite).
type DatabaseConfig struct {
	Dialect  string `yaml:"dialect" env:"DB_DIALECT" env-default:"postgresql"`
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT"` // 0 selects the dialect default
	User     string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"postgres"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	DSN      string `yaml:"-" env:"DB_DSN"`
}

// GenerationConfig selects and tunes the text-to-SQL provider.
type GenerationConfig struct {
	Provider string `yaml:"provider" env:"GENERATION_PROVIDER" env-default:"edenai"`
	Endpoint string `yaml:"endpoint" env:"GENERATION_ENDPOINT" env-default:"https://api.edenai.run/v2/text/generation"`
	// ProviderName is the upstream engine Eden AI routes to; it is also the
	// key of the response object.
	ProviderName string        `yaml:"provider_name" env:"EDEN_AI_PROVIDER" env-default:"google"`
	Model        string        `yaml:"model" env:"GENERATION_MODEL" env-default:""`
	Temperature  float32       `yaml:"temperature" env:"GENERATION_TEMPERATURE" env-default:"0.1"`
	MaxTokens    int           `yaml:"max_tokens" env:"GENERATION_MAX_TOKENS" env-default:"300"`
	Timeout      time.Duration `yaml:"timeout" env:"GENERATION_TIMEOUT" env-default:"30s"`
	// MaxRetries re-issues rate-limited and 5xx provider calls. Default 0: a
	// failure is reported to the user as-is.
	MaxRetries int `yaml:"max_retries" env:"GENERATION_MAX_RETRIES" env-default:"0"`

	EdenAIAPIKey    string `yaml:"-" env:"EDEN_AI_API_KEY"`
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `yaml:"-" env:"GEMINI_API_KEY"`
}

// StorageConfig names the history and preferences documents.
type StorageConfig struct {
	HistoryFile     string `yaml:"history_file" env:"QUERY_HISTORY_FILE" env-default:"query_history.json"`
	PreferencesFile string `yaml:"preferences_file" env:"USER_PREFERENCES_FILE" env-default:"user_preferences.json"`
}

// PlaygroundConfig bounds what the playground may return.
type PlaygroundConfig struct {
	RowLimit         int           `yaml:"row_limit" env:"PLAYGROUND_ROW_LIMIT" env-default:"100"`
	PreviewLimit     int           `yaml:"preview_limit" env:"PLAYGROUND_PREVIEW_LIMIT" env-default:"5"`
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"PLAYGROUND_STATEMENT_TIMEOUT" env-default:"30s"`
}

// Load reads DefaultConfigFile (if present) with environment overrides.
func Load(version string) (*Config, error) {
	return LoadFile(version, DefaultConfigFile)
}

// LoadFile reads configuration from path, falling back to the environment
// alone when path does not exist.
func LoadFile(version, path string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Generation.Provider = strings.ToLower(strings.TrimSpace(c.Generation.Provider))
	switch c.Generation.Provider {
	case ProviderEdenAI, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}

	d, err := sqlpkg.ParseDialect(c.Database.Dialect)
	if err != nil {
		return err
	}
	c.Database.Dialect = string(d)

	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation max_retries must not be negative, got %d", c.Generation.MaxRetries)
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation timeout must be positive")
	}
	if c.Playground.RowLimit <= 0 {
		return fmt.Errorf("playground row_limit must be positive, got %d", c.Playground.RowLimit)
	}
	if c.Playground.PreviewLimit <= 0 {
		return fmt.Errorf("playground preview_limit must be positive, got %d", c.Playground.PreviewLimit)
	}
	return nil
}

// IsLocal reports whether the server runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "dev" || c.Env == "development"
}

// APIKey returns the credential for the configured provider.
func (g *GenerationConfig) APIKey() string {
	switch g.Provider {
	case ProviderOpenAI:
		return g.OpenAIAPIKey
	case ProviderAnthropic:
		return g.AnthropicAPIKey
	case ProviderGemini:
		return g.GeminiAPIKey
	default:
		return g.EdenAIAPIKey
	}
}
