package mysql

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
)

// DefaultPort returns the default MySQL port.
func DefaultPort() int {
	return 3306
}

// tlsModes maps libpq-style sslmode values onto the driver's tls parameter.
var tlsModes = map[string]string{
	"":            "preferred",
	"disable":     "false",
	"allow":       "preferred",
	"prefer":      "preferred",
	"require":     "skip-verify",
	"verify-ca":   "true",
	"verify-full": "true",
}

// buildDSN returns a go-sql-driver DSN. A DSN in cc is returned untouched.
func buildDSN(cc datasource.ConnectionConfig) (string, error) {
	if cc.DSN != "" {
		return cc.DSN, nil
	}
	if cc.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	if cc.User == "" {
		return "", fmt.Errorf("user is required")
	}
	if cc.Database == "" {
		return "", fmt.Errorf("database is required")
	}

	tlsMode, ok := tlsModes[cc.SSLMode]
	if !ok {
		return "", fmt.Errorf("invalid ssl mode: %s", cc.SSLMode)
	}

	port := cc.Port
	if port == 0 {
		port = DefaultPort()
	}

	cfg := mysql.NewConfig()
	cfg.User = cc.User
	cfg.Passwd = cc.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.ResolveHostForDocker(cc.Host), strconv.Itoa(port))
	cfg.DBName = cc.Database
	cfg.TLSConfig = tlsMode
	cfg.ParseTime = true

	return cfg.FormatDSN(), nil
}
