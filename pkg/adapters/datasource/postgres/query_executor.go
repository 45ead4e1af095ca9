package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// QueryExecutor provides query execution over one PostgreSQL connection.
type QueryExecutor struct {
	conn   *pgx.Conn
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
func (e *QueryExecutor) Dialect() sqlpkg.Dialect { return sqlpkg.PostgreSQL }

// Query runs the statement as-is and collects all rows.
func (e *QueryExecutor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	rows, err := e.conn.Query(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]datasource.ColumnInfo, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = datasource.ColumnInfo{
			Name: fd.Name,
			Type: e.typeName(fd.DataTypeOID),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col.Name] = normalizeValue(values[i])
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &datasource.QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// ExplainQuery returns the planner's text plan. The statement is not executed.
func (e *QueryExecutor) ExplainQuery(ctx context.Context, sqlQuery string) (*datasource.ExplainResult, error) {
	rows, err := e.conn.Query(ctx, "EXPLAIN (FORMAT TEXT) "+sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN failed: %w", err)
	}
	defer rows.Close()

	var planLines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan EXPLAIN output: %w", err)
		}
		planLines = append(planLines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading EXPLAIN output: %w", err)
	}

	return &datasource.ExplainResult{
		Plan:             strings.Join(planLines, "\n"),
		PerformanceHints: datasource.PerformanceHints(sqlpkg.PostgreSQL, planLines),
	}, nil
}

// Close releases the connection.
func (e *QueryExecutor) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close(context.Background())
}

// QuoteIdentifier safely quotes an identifier (table name, column name) for use in SQL.
// A dotted name is quoted per part so "sales.orders" stays schema-qualified.
func (e *QueryExecutor) QuoteIdentifier(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// normalizeValue converts driver values that do not serialize readably.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	default:
		return v
	}
}

// typeName resolves a column OID through the connection's type map.
// Array types are reported as ELEM[]; OIDs pgx does not know are UNKNOWN.
func (e *QueryExecutor) typeName(oid uint32) string {
	t, ok := e.conn.TypeMap().TypeForOID(oid)
	if !ok {
		return "UNKNOWN"
	}
	name := strings.ToUpper(t.Name)
	if elem, isArray := strings.CutPrefix(name, "_"); isArray {
		return elem + "[]"
	}
	return name
}

// Ensure QueryExecutor implements datasource.QueryExecutor at compile time.
var _ datasource.QueryExecutor = (*QueryExecutor)(nil)
