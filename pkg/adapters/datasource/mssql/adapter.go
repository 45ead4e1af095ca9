package mssql

import (
	"context"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
)

// buildConnectionString creates a sqlserver:// URL for SQL Server authentication.
func buildConnectionString(cfg *Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}

	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		config.ResolveHostForDocker(cfg.Host),
		cfg.Port,
		query.Encode(),
	)
}

func connect(ctx context.Context, cfg *Config, logger *zap.Logger) (*datasource.SingleConn, error) {
	connStr := buildConnectionString(cfg)

	conn, err := datasource.OpenSingleConn(ctx, "sqlserver", connStr)
	if err != nil {
		logger.Debug("SQL Server connect failed",
			zap.String("dsn", logging.SanitizeConnectionString(connStr)),
			logging.Error(err))
		return nil, err
	}
	return conn, nil
}
