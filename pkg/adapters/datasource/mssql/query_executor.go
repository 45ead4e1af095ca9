package mssql

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// QueryExecutor provides query execution over one SQL Server connection.
type QueryExecutor struct {
	conn   *datasource.SingleConn
	logger *zap.Logger
}

// NewQueryExecutor opens a connection for the lifetime of the executor.
func NewQueryExecutor(ctx context.Context, cfg *Config, logger *zap.Logger) (*QueryExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &QueryExecutor{conn: conn, logger: logger}, nil
}

// Dialect implements datasource.QueryExecutor.
func (e *QueryExecutor) Dialect() sqlpkg.Dialect { return sqlpkg.MSSQL }

// Query runs the statement as-is. Row limits are applied by the caller
// with TOP, so the text is not wrapped here.
func (e *QueryExecutor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	return datasource.QueryDB(ctx, e.conn, sqlQuery, mapSQLServerType)
}

// ExplainQuery uses SHOWPLAN_TEXT, which shows the plan without executing.
func (e *QueryExecutor) ExplainQuery(ctx context.Context, sqlQuery string) (*datasource.ExplainResult, error) {
	if _, err := e.conn.ExecContext(ctx, "SET SHOWPLAN_TEXT ON"); err != nil {
		return nil, fmt.Errorf("failed to enable showplan: %w", err)
	}
	defer func() {
		if _, err := e.conn.ExecContext(context.Background(), "SET SHOWPLAN_TEXT OFF"); err != nil {
			e.logger.Warn("Failed to disable showplan", zap.Error(err))
		}
	}()

	rows, err := e.conn.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN query failed: %w", err)
	}
	defer rows.Close()

	// SHOWPLAN_TEXT returns the statement text and the plan as separate result sets.
	var planLines []string
	for {
		for rows.Next() {
			var stmtText string
			if err := rows.Scan(&stmtText); err != nil {
				return nil, fmt.Errorf("failed to scan execution plan: %w", err)
			}
			if stmtText != "" {
				planLines = append(planLines, stmtText)
			}
		}
		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading execution plan: %w", err)
	}

	result := &datasource.ExplainResult{
		Plan:             "Execution plan not available. Query syntax may be invalid.",
		PerformanceHints: datasource.PerformanceHints(sqlpkg.MSSQL, planLines),
	}
	if len(planLines) > 0 {
		result.Plan = "SQL Server Execution Plan:\n" + strings.Join(planLines, "\n")
	}
	return result, nil
}

// QuoteIdentifier returns a bracket-quoted identifier safe for SQL Server.
func (e *QueryExecutor) QuoteIdentifier(name string) string {
	return quoteName(name)
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
