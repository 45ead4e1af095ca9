package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/retry"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// RetryingGenerator re-issues transient provider failures with backoff.
type RetryingGenerator struct {
	inner  SQLGenerator
	cfg    retry.Config
	logger *zap.Logger
}

// NewRetryingGenerator wraps inner. A nil cfg uses retry.DefaultConfig.
func NewRetryingGenerator(inner SQLGenerator, cfg *retry.Config, logger *zap.Logger) *RetryingGenerator {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	g := &RetryingGenerator{
		inner:  inner,
		cfg:    *cfg,
		logger: logger.Named("llm-retry").With(zap.String("provider", inner.Provider())),
	}
	g.cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		g.logger.Warn("Retrying generation",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("error_type", string(GetErrorType(err))))
	}
	return g
}

// GenerateSQL implements SQLGenerator.
func (g *RetryingGenerator) GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error) {
	var out string
	err := retry.Do(ctx, &g.cfg, func(ctx context.Context) error {
		var err error
		out, err = g.inner.GenerateSQL(ctx, naturalQuery, s)
		return err
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Provider implements SQLGenerator.
func (g *RetryingGenerator) Provider() string { return g.inner.Provider() }

// Ensure RetryingGenerator implements SQLGenerator at compile time.
var _ SQLGenerator = (*RetryingGenerator)(nil)
