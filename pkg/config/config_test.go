package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

// chdirTemp moves the test into an empty directory so neither a stray
// config.yaml nor a .env leaks into the result.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
	return tmpDir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.Generation.Provider != ProviderEdenAI {
		t.Errorf("expected provider %q, got %q", ProviderEdenAI, cfg.Generation.Provider)
	}
	if cfg.Generation.Endpoint != "https://api.edenai.run/v2/text/generation" {
		t.Errorf("unexpected endpoint %q", cfg.Generation.Endpoint)
	}
	if cfg.Generation.ProviderName != "google" {
		t.Errorf("expected provider name google, got %q", cfg.Generation.ProviderName)
	}
	if cfg.Generation.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %v", cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxTokens != 300 {
		t.Errorf("expected max tokens 300, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Generation.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Generation.Timeout)
	}
	if cfg.Generation.MaxRetries != 0 {
		t.Errorf("expected retries disabled by default, got %d", cfg.Generation.MaxRetries)
	}
	if cfg.Storage.HistoryFile != "query_history.json" {
		t.Errorf("unexpected history file %q", cfg.Storage.HistoryFile)
	}
	if cfg.Storage.PreferencesFile != "user_preferences.json" {
		t.Errorf("unexpected preferences file %q", cfg.Storage.PreferencesFile)
	}
	if cfg.Playground.RowLimit != 100 {
		t.Errorf("expected row limit 100, got %d", cfg.Playground.RowLimit)
	}
	if cfg.Database.Dialect != "postgresql" {
		t.Errorf("expected postgresql dialect, got %q", cfg.Database.Dialect)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)

	yamlContent := `
port: "9000"
env: "test"
database:
  host: "db.example.com"
  port: 5433
  user: "analyst"
  database: "sales"
generation:
  provider: "openai"
  model: "gpt-4o-mini"
playground:
  row_limit: 50
`
	if err := os.WriteFile(filepath.Join(tmpDir, DefaultConfigFile), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("PORT", "9100")
	t.Setenv("PGPASSWORD", "s3cret")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9100" {
		t.Errorf("expected Port=9100 (from env), got %s", cfg.Port)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host from yaml, got %s", cfg.Database.Host)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("expected Database.Port=5433, got %d", cfg.Database.Port)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("expected password from env")
	}
	if cfg.Generation.Provider != ProviderOpenAI {
		t.Errorf("expected openai provider, got %q", cfg.Generation.Provider)
	}
	if cfg.Generation.APIKey() != "sk-test" {
		t.Errorf("expected APIKey() to select OPENAI_API_KEY, got %q", cfg.Generation.APIKey())
	}
	if cfg.Playground.RowLimit != 50 {
		t.Errorf("expected row limit 50, got %d", cfg.Playground.RowLimit)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("SQLSAGE_DOTENV_PROBE=1\nQUERY_HISTORY_FILE=from_dotenv.json\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SQLSAGE_DOTENV_PROBE")
		os.Unsetenv("QUERY_HISTORY_FILE")
	})

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Storage.HistoryFile != "from_dotenv.json" {
		t.Errorf("expected history file from .env, got %q", cfg.Storage.HistoryFile)
	}
}

func TestLoad_InvalidProvider(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GENERATION_PROVIDER", "carrier-pigeon")

	_, err := Load("dev")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("expected error to name the provider, got %v", err)
	}
}

func TestLoad_DialectAlias(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DIALECT", " Postgres ")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Dialect != "postgresql" {
		t.Errorf("expected alias to resolve to postgresql, got %q", cfg.Database.Dialect)
	}
}

func TestLoad_InvalidDialect(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DIALECT", "oracle")

	_, err := Load("dev")
	if err == nil {
		t.Fatal("expected error for unknown dialect")
	}
	if !errors.Is(err, apperrors.ErrUnsupportedDialect) {
		t.Errorf("expected ErrUnsupportedDialect, got %v", err)
	}
}

func TestLoad_InvalidRowLimit(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PLAYGROUND_ROW_LIMIT", "0")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error for zero row limit")
	}
}

func TestGenerationConfig_APIKey(t *testing.T) {
	g := GenerationConfig{
		EdenAIAPIKey:    "eden",
		OpenAIAPIKey:    "openai",
		AnthropicAPIKey: "anthropic",
		GeminiAPIKey:    "gemini",
	}

	tests := map[string]string{
		ProviderEdenAI:    "eden",
		ProviderOpenAI:    "openai",
		ProviderAnthropic: "anthropic",
		ProviderGemini:    "gemini",
	}
	for provider, want := range tests {
		g.Provider = provider
		if got := g.APIKey(); got != want {
			t.Errorf("APIKey() for %s = %q, want %q", provider, got, want)
		}
	}
}
