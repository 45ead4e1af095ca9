package mysql

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// QueryExecutor provides query execution over one MySQL connection.
type QueryExecutor struct {
	conn   *datasource.SingleConn
	logger *zap.Logger
}

// NewQueryExecutor opens a connection for the lifetime of the executor.
func NewQueryExecutor(ctx context.Context, cc datasource.ConnectionConfig, logger *zap.Logger) (*QueryExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn, err := buildDSN(cc)
	if err != nil {
		return nil, err
	}

	conn, err := datasource.OpenSingleConn(ctx, "mysql", dsn)
	if err != nil {
		logger.Debug("MySQL connect failed",
			zap.String("dsn", logging.SanitizeConnectionString(dsn)),
			logging.Error(err))
		return nil, err
	}

	return &QueryExecutor{conn: conn, logger: logger}, nil
}

// Dialect implements datasource.QueryExecutor.
func (e *QueryExecutor) Dialect() sqlpkg.Dialect { return sqlpkg.MySQL }

// Query runs the statement as-is and collects all rows.
func (e *QueryExecutor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	return datasource.QueryDB(ctx, e.conn, sqlQuery, nil)
}

// ExplainQuery renders each EXPLAIN row as "column=value" pairs.
func (e *QueryExecutor) ExplainQuery(ctx context.Context, sqlQuery string) (*datasource.ExplainResult, error) {
	result, err := datasource.QueryDB(ctx, e.conn, "EXPLAIN "+sqlQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN failed: %w", err)
	}

	planLines := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		parts := make([]string, 0, len(result.Columns))
		for _, col := range result.Columns {
			v := row[col.Name]
			if v == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%v", col.Name, v))
		}
		planLines = append(planLines, strings.Join(parts, " "))
	}

	return &datasource.ExplainResult{
		Plan:             strings.Join(planLines, "\n"),
		PerformanceHints: datasource.PerformanceHints(sqlpkg.MySQL, planLines),
	}, nil
}

// QuoteIdentifier backtick-quotes an identifier, per part for dotted names.
func (e *QueryExecutor) QuoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
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
