package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Querier is the subset of *sql.DB and *sql.Conn the shared helpers need.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SingleConn is one dedicated database/sql connection and the handle that owns it.
// Session settings (SET ...) made through it apply to every later statement.
type SingleConn struct {
	db   *sql.DB
	conn *sql.Conn
}

// OpenSingleConn dials exactly one connection with the named driver.
func OpenSingleConn(ctx context.Context, driverName, dsn string) (*SingleConn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driverName, err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	return &SingleConn{db: db, conn: conn}, nil
}

// NewSingleConn wraps an already open handle, e.g. one built by sqlmock.
func NewSingleConn(ctx context.Context, db *sql.DB) (*SingleConn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("connection test failed: %w", err)
	}
	return &SingleConn{db: db, conn: conn}, nil
}

// QueryContext implements Querier on the dedicated connection.
func (s *SingleConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// ExecContext runs a statement on the dedicated connection.
func (s *SingleConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

// Close releases the connection and its handle.
func (s *SingleConn) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

// TypeMapper normalizes a driver type name for ColumnInfo.Type.
type TypeMapper func(databaseTypeName string) string

// QueryDB runs sqlQuery and collects every row. Statements without a result
// set come back with no columns and no rows.
func QueryDB(ctx context.Context, q Querier, sqlQuery string, mapType TypeMapper) (*QueryExecutionResult, error) {
	rows, err := q.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return CollectRows(rows, mapType)
}

// CollectRows reads a database/sql result set into a QueryExecutionResult.
// Byte slices from textual columns are converted to strings.
func CollectRows(rows *sql.Rows, mapType TypeMapper) (*QueryExecutionResult, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	columns := make([]ColumnInfo, len(columnNames))
	for i, colName := range columnNames {
		typeName := strings.ToUpper(columnTypes[i].DatabaseTypeName())
		if mapType != nil {
			typeName = mapType(typeName)
		}
		columns[i] = ColumnInfo{Name: colName, Type: typeName}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any, len(columnNames))
		for i, col := range columnNames {
			val := values[i]
			if b, ok := val.([]byte); ok && !isBinaryType(columns[i].Type) {
				val = string(b)
			}
			rowMap[col] = val
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// ScanAll runs query and converts each row with scan.
func ScanAll[T any](ctx context.Context, q Querier, query string, scan func(*sql.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// ScanStrings runs a query whose first column is text and returns that column.
func ScanStrings(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	return ScanAll(ctx, q, query, func(rows *sql.Rows) (string, error) {
		var s sql.NullString
		err := rows.Scan(&s)
		return s.String, err
	}, args...)
}

// ScanTableRow reads a (schema, table) row.
func ScanTableRow(rows *sql.Rows) (TableMetadata, error) {
	var t TableMetadata
	err := rows.Scan(&t.SchemaName, &t.TableName)
	return t, err
}

func isBinaryType(typeName string) bool {
	t := strings.ToUpper(typeName)
	return strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY") ||
		t == "BYTEA" || t == "IMAGE"
}
