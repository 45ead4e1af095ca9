package postgres

import (
	"net/url"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
)

func TestBuildConnectionString_EscapesCredentials(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		database string
		encoded  []string
	}{
		{name: "at sign in password", user: "u", password: "p@ssword", database: "db", encoded: []string{"%40"}},
		{name: "slash and hash", user: "u", password: "p/ss#word", database: "db", encoded: []string{"%2F", "%23"}},
		{name: "quote injection", user: "u", password: "';DROP-TABLE-users;--", database: "db", encoded: []string{"%27"}},
		{name: "user with at sign", user: "admin@corp", password: "x", database: "db", encoded: []string{"admin%40corp"}},
		{name: "database with question mark", user: "u", password: "x", database: "my?db", encoded: []string{"my%3Fdb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connStr := buildConnectionString(&Config{
				Host: "db.example.com", Port: 5432,
				User: tt.user, Password: tt.password, Database: tt.database,
				SSLMode: "disable",
			})

			assert.True(t, strings.HasPrefix(connStr, "postgresql://"))
			for _, enc := range tt.encoded {
				assert.Contains(t, connStr, enc)
			}

			parsed, err := url.Parse(connStr)
			require.NoError(t, err, "connection string must stay a valid URL")
			pw, _ := parsed.User.Password()
			assert.Equal(t, tt.password, pw)
			assert.Equal(t, tt.user, parsed.User.Username())
			assert.Equal(t, "db.example.com:5432", parsed.Host)
		})
	}
}

func TestBuildConnectionString_DefaultSSLMode(t *testing.T) {
	connStr := buildConnectionString(&Config{Host: "db.example.com", Port: 5432, User: "u", Database: "d"})
	assert.True(t, strings.HasSuffix(connStr, "?sslmode=require"))
}

func TestBuildConnectionString_DSNOverrides(t *testing.T) {
	dsn := "postgres://reader@replica:6543/analytics?sslmode=verify-full"
	assert.Equal(t, dsn, buildConnectionString(&Config{Host: "ignored", DSN: dsn}))
}

func TestFromConnectionConfig(t *testing.T) {
	cfg, err := FromConnectionConfig(datasource.ConnectionConfig{Host: "h", User: "u", Database: "d"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPort(), cfg.Port)
	assert.Equal(t, DefaultSSLMode(), cfg.SSLMode)

	_, err = FromConnectionConfig(datasource.ConnectionConfig{User: "u", Database: "d"})
	assert.EqualError(t, err, "host is required")

	_, err = FromConnectionConfig(datasource.ConnectionConfig{Host: "h", Database: "d"})
	assert.EqualError(t, err, "user is required")

	_, err = FromConnectionConfig(datasource.ConnectionConfig{Host: "h", User: "u"})
	assert.EqualError(t, err, "database is required")

	cfg, err = FromConnectionConfig(datasource.ConnectionConfig{DSN: "postgres://x"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://x", cfg.DSN)
}

func TestQuoteIdentifier(t *testing.T) {
	e := &QueryExecutor{}
	assert.Equal(t, `"users"`, e.QuoteIdentifier("users"))
	assert.Equal(t, `"sales"."orders"`, e.QuoteIdentifier("sales.orders"))
	assert.Equal(t, `"we""ird"`, e.QuoteIdentifier(`we"ird`))
	assert.Equal(t, pgx.Identifier{"a"}.Sanitize(), e.QuoteIdentifier("a"))
}

func TestNormalizeValue(t *testing.T) {
	id := [16]byte{0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4, 0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00}
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", normalizeValue(id))
	assert.Equal(t, int32(4), normalizeValue(int32(4)))
	assert.Nil(t, normalizeValue(nil))
}
