package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// Every query is scoped to DATABASE(), so table names are never qualified.
const (
	listTablesQuery = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	columnsQuery = `
		SELECT c.table_name, c.column_name, c.data_type,
			c.is_nullable = 'YES', c.column_key = 'PRI', c.column_default
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema
			AND t.table_name = c.table_name
			AND t.table_type = 'BASE TABLE'
		WHERE c.table_schema = DATABASE()
		ORDER BY c.table_name, c.ordinal_position`

	foreignKeysQuery = `
		SELECT table_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND referenced_table_name IS NOT NULL
		ORDER BY table_name, column_name`
)

// ListTables returns the base tables of the connected database.
func (e *QueryExecutor) ListTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	tables, err := datasource.ScanAll(ctx, e.conn, listTablesQuery, datasource.ScanTableRow)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// DiscoverSchema introspects every base table of the connected database.
func (e *QueryExecutor) DiscoverSchema(ctx context.Context) (*schema.Schema, error) {
	tables, err := e.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.TableName
	}

	columns, err := datasource.ScanAll(ctx, e.conn, columnsQuery, func(rows *sql.Rows) (datasource.ColumnMetadata, error) {
		var c datasource.ColumnMetadata
		var def sql.NullString
		err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType, &c.IsNullable, &c.IsPrimaryKey, &def)
		if def.Valid {
			c.DefaultValue = &def.String
		}
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("discover columns: %w", err)
	}

	fks, err := datasource.ScanAll(ctx, e.conn, foreignKeysQuery, func(rows *sql.Rows) (datasource.ForeignKeyMetadata, error) {
		var fk datasource.ForeignKeyMetadata
		err := rows.Scan(&fk.SourceTable, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn)
		return fk, err
	})
	if err != nil {
		return nil, fmt.Errorf("discover foreign keys: %w", err)
	}

	return datasource.BuildSchema(names, columns, fks), nil
}
