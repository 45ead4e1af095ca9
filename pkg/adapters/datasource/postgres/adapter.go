package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
)

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// IMPORTANT: All user-provided fields must be URL-escaped to handle special characters
// in passwords (e.g., @, /, #, ?) that would otherwise break URL parsing.
// When running in Docker, localhost is automatically resolved to host.docker.internal
// to allow connections to databases running on the host machine.
func buildConnectionString(cfg *Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	host := config.ResolveHostForDocker(cfg.Host)

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		sslMode,
	)
}

// connect opens a single connection; the caller closes it.
func connect(ctx context.Context, cfg *Config, logger *zap.Logger) (*pgx.Conn, error) {
	connStr := buildConnectionString(cfg)

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		logger.Debug("PostgreSQL connect failed",
			zap.String("dsn", logging.SanitizeConnectionString(connStr)),
			logging.Error(err))
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	return conn, nil
}
