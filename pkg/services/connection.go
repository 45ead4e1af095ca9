package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
)

// ConnectionFromConfig maps the configured execution connection.
func ConnectionFromConfig(cfg config.DatabaseConfig) datasource.ConnectionConfig {
	return datasource.ConnectionConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		SSLMode:  cfg.SSLMode,
		DSN:      cfg.DSN,
	}
}

// ConnectionFromProfile maps a resolved profile. sslMode is carried over from
// the configured connection since profiles do not store it.
func ConnectionFromProfile(p preferences.ConnectionProfile, sslMode string) (datasource.ConnectionConfig, error) {
	port, err := strconv.Atoi(strings.TrimSpace(p.Port))
	if err != nil || port <= 0 || port > 65535 {
		return datasource.ConnectionConfig{}, fmt.Errorf("%w: invalid port %q", apperrors.ErrInvalidProfile, p.Port)
	}
	return datasource.ConnectionConfig{
		Host:     p.Host,
		Port:     port,
		User:     p.Username,
		Password: p.Password,
		Database: p.Database,
		SSLMode:  sslMode,
	}, nil
}
