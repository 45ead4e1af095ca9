package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

const defaultSchema = "public"

// columnRow and foreignKeyRow mirror the introspection query column order.
type columnRow struct {
	Schema   string
	Table    string
	Column   string
	DataType string
	Nullable bool
	Primary  bool
	Default  *string
}

type foreignKeyRow struct {
	SourceSchema string
	SourceTable  string
	SourceColumn string
	TargetSchema string
	TargetTable  string
	TargetColumn string
}

// ListTables returns all user tables (excludes system schemas).
func (e *QueryExecutor) ListTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	const query = `
		SELECT t.table_schema, t.table_name
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
		  AND t.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY t.table_schema, t.table_name
	`

	rows, err := e.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowToStructByPos[datasource.TableMetadata])
	if err != nil {
		return nil, fmt.Errorf("collect tables: %w", err)
	}
	return tables, nil
}

// DiscoverSchema introspects every user table. Tables outside "public" are
// keyed as "schema.table".
func (e *QueryExecutor) DiscoverSchema(ctx context.Context) (*schema.Schema, error) {
	tables, err := e.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.QualifiedName(defaultSchema)
	}

	columns, err := e.discoverColumns(ctx)
	if err != nil {
		return nil, err
	}

	fks, err := e.discoverForeignKeys(ctx)
	if err != nil {
		return nil, err
	}

	return datasource.BuildSchema(names, columns, fks), nil
}

// discoverColumns uses pg_index for primary key detection, which correctly identifies
// primary keys even when created as unique indexes (common with ORMs).
func (e *QueryExecutor) discoverColumns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT
			c.table_schema,
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' as is_nullable,
			COALESCE(pk.is_pk, false) as is_primary_key,
			c.column_default
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema
			AND t.table_name = c.table_name
			AND t.table_type = 'BASE TABLE'
		LEFT JOIN (
			SELECT n.nspname as table_schema, t.relname as table_name, a.attname as column_name, true as is_pk
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
			WHERE ix.indisprimary = true
		) pk ON pk.table_schema = c.table_schema
			AND pk.table_name = c.table_name
			AND pk.column_name = c.column_name
		WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY c.table_schema, c.table_name, c.ordinal_position
	`

	rows, err := e.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByPos[columnRow])
	if err != nil {
		return nil, fmt.Errorf("collect columns: %w", err)
	}

	columns := make([]datasource.ColumnMetadata, len(found))
	for i, r := range found {
		columns[i] = datasource.ColumnMetadata{
			TableName:    qualify(r.Schema, r.Table),
			ColumnName:   r.Column,
			DataType:     r.DataType,
			IsNullable:   r.Nullable,
			IsPrimaryKey: r.Primary,
			DefaultValue: r.Default,
		}
	}
	return columns, nil
}

func (e *QueryExecutor) discoverForeignKeys(ctx context.Context) ([]datasource.ForeignKeyMetadata, error) {
	const query = `
		SELECT
			kcu.table_schema as source_schema,
			kcu.table_name as source_table,
			kcu.column_name as source_column,
			ccu.table_schema as target_schema,
			ccu.table_name as target_table,
			ccu.column_name as target_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY source_schema, source_table, source_column
	`

	rows, err := e.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByPos[foreignKeyRow])
	if err != nil {
		return nil, fmt.Errorf("collect foreign keys: %w", err)
	}

	fks := make([]datasource.ForeignKeyMetadata, len(found))
	for i, r := range found {
		fks[i] = datasource.ForeignKeyMetadata{
			SourceTable:  qualify(r.SourceSchema, r.SourceTable),
			SourceColumn: r.SourceColumn,
			TargetTable:  qualify(r.TargetSchema, r.TargetTable),
			TargetColumn: r.TargetColumn,
		}
	}
	return fks, nil
}

func qualify(schemaName, table string) string {
	return datasource.TableMetadata{SchemaName: schemaName, TableName: table}.QualifiedName(defaultSchema)
}
