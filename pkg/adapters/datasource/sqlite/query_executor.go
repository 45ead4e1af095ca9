// Package sqlite adapts SQLite files for the playground via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// QueryExecutor provides query execution over one SQLite connection.
type QueryExecutor struct {
	conn   *datasource.SingleConn
	logger *zap.Logger
}

// NewQueryExecutor opens the database named by cc.DSN (a file path or
// "file:" URI). Host-based fields are ignored.
func NewQueryExecutor(ctx context.Context, cc datasource.ConnectionConfig, logger *zap.Logger) (*QueryExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cc.DSN == "" {
		return nil, fmt.Errorf("dsn is required for sqlite")
	}

	conn, err := datasource.OpenSingleConn(ctx, "sqlite", cc.DSN)
	if err != nil {
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	logger.Debug("Opened SQLite database", zap.String("dsn", cc.DSN))
	return &QueryExecutor{conn: conn, logger: logger}, nil
}

// Dialect implements datasource.QueryExecutor.
func (e *QueryExecutor) Dialect() sqlpkg.Dialect { return sqlpkg.SQLite }

// Query runs the statement as-is and collects all rows.
func (e *QueryExecutor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	return datasource.QueryDB(ctx, e.conn, sqlQuery, nil)
}

// ExplainQuery returns the detail column of EXPLAIN QUERY PLAN.
func (e *QueryExecutor) ExplainQuery(ctx context.Context, sqlQuery string) (*datasource.ExplainResult, error) {
	result, err := datasource.QueryDB(ctx, e.conn, "EXPLAIN QUERY PLAN "+sqlQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN failed: %w", err)
	}

	planLines := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if detail, ok := row["detail"].(string); ok {
			planLines = append(planLines, detail)
		}
	}

	return &datasource.ExplainResult{
		Plan:             strings.Join(planLines, "\n"),
		PerformanceHints: datasource.PerformanceHints(sqlpkg.SQLite, planLines),
	}, nil
}

// QuoteIdentifier double-quotes an identifier, per part for dotted names.
func (e *QueryExecutor) QuoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// Close releases the connection.
func (e *QueryExecutor) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

// Ensure QueryExecutor implements datasource.QueryExecutor at compile time.
var _ datasource.QueryExecutor = (*QueryExecutor)(nil)
