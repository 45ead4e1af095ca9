package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
)

func newMockExecutor(t *testing.T) (*QueryExecutor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	conn, err := datasource.NewSingleConn(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &QueryExecutor{conn: conn, logger: zaptest.NewLogger(t)}, mock
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(datasource.ConnectionConfig{
		Host: "db.example.com", User: "app", Password: "p@ss:word", Database: "shop", SSLMode: "disable",
	})
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "db.example.com:3306", cfg.Addr)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Equal(t, "false", cfg.TLSConfig)
	assert.True(t, cfg.ParseTime)
}

func TestBuildDSN_Errors(t *testing.T) {
	_, err := buildDSN(datasource.ConnectionConfig{User: "u", Database: "d"})
	assert.EqualError(t, err, "host is required")

	_, err = buildDSN(datasource.ConnectionConfig{Host: "h", User: "u", Database: "d", SSLMode: "bogus"})
	assert.EqualError(t, err, "invalid ssl mode: bogus")

	dsn, err := buildDSN(datasource.ConnectionConfig{DSN: "root@tcp(localhost:3306)/x"})
	require.NoError(t, err)
	assert.Equal(t, "root@tcp(localhost:3306)/x", dsn)
}

func TestQueryExecutor_ExplainQuery(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectQuery("EXPLAIN SELECT \\* FROM users ORDER BY name").WillReturnRows(
		sqlmock.NewRows([]string{"id", "table", "type", "key", "Extra"}).
			AddRow(int64(1), []byte("users"), []byte("ALL"), nil, []byte("Using filesort")),
	)

	result, err := e.ExplainQuery(context.Background(), "SELECT * FROM users ORDER BY name")
	require.NoError(t, err)

	assert.Equal(t, "id=1 table=users type=ALL Extra=Using filesort", result.Plan)
	assert.Equal(t, []string{
		"Full table scan detected - consider adding an index if this table is large",
		"Filesort detected - an index matching ORDER BY may avoid sorting",
	}, result.PerformanceHints)
}

func TestQueryExecutor_DiscoverSchema(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectQuery("FROM information_schema.tables").WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name"}).AddRow("shop", "orders").AddRow("shop", "users"),
	)
	mock.ExpectQuery("FROM information_schema.columns").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type", "nullable", "pk", "default"}).
			AddRow("orders", "id", "int", false, true, nil).
			AddRow("orders", "user_id", "int", false, false, nil).
			AddRow("users", "id", "int", false, true, nil).
			AddRow("users", "status", "varchar", true, false, "active"),
	)
	mock.ExpectQuery("FROM information_schema.key_column_usage").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "referenced_table_name", "referenced_column_name"}).
			AddRow("orders", "user_id", "users", "id"),
	)

	s, err := e.DiscoverSchema(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"orders", "users"}, s.TableNames())
	assert.True(t, s.Tables["users"].Columns["id"].IsPrimary)
	assert.Equal(t, "active", s.Tables["users"].Columns["status"].Default)
	require.Len(t, s.Tables["orders"].Relationships, 1)
	assert.Equal(t, "users", s.Tables["orders"].Relationships[0].ReferencedTable)
}

func TestQuoteIdentifier(t *testing.T) {
	e := &QueryExecutor{}
	assert.Equal(t, "`users`", e.QuoteIdentifier("users"))
	assert.Equal(t, "`shop`.`orders`", e.QuoteIdentifier("shop.orders"))
	assert.Equal(t, "`we``ird`", e.QuoteIdentifier("we`ird"))
}
