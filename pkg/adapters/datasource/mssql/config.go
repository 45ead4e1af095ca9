package mssql

import (
	"fmt"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
)

// Config contains SQL Server-specific connection options. Only SQL
// Server authentication is supported.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Connection options
	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeout      int

	DSN string // used verbatim when set
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// FromConnectionConfig maps the dialect-neutral description onto SQL Server
// options. SSLMode "disable" turns encryption off; "require" encrypts without
// verifying the server certificate.
func FromConnectionConfig(cc datasource.ConnectionConfig) (*Config, error) {
	cfg := &Config{
		Host:              cc.Host,
		Port:              cc.Port,
		Database:          cc.Database,
		Username:          cc.User,
		Password:          cc.Password,
		Encrypt:           true,
		ConnectionTimeout: DefaultConnectionTimeout(),
		DSN:               cc.DSN,
	}
	if cfg.DSN != "" {
		return cfg, nil
	}

	if cfg.Port == 0 {
		cfg.Port = DefaultPort()
	}
	switch cc.SSLMode {
	case "disable":
		cfg.Encrypt = false
	case "", "require", "prefer", "allow":
		cfg.TrustServerCertificate = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the config has all required fields.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required for SQL authentication")
	}
	return nil
}
