package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

const defaultSchema = "dbo"

const listTablesQuery = `
SET NOCOUNT ON;
SELECT SCHEMA_NAME(t.schema_id), t.name
FROM sys.tables t
WHERE t.is_ms_shipped = 0
ORDER BY 1, 2`

// Primary keys come from sys.indexes so ORM-created unique PK indexes count.
const columnsQuery = `
SET NOCOUNT ON;
SELECT
    SCHEMA_NAME(t.schema_id),
    t.name,
    c.name,
    tp.name,
    c.is_nullable,
    CAST(CASE WHEN pk.column_id IS NULL THEN 0 ELSE 1 END AS bit),
    dc.definition
FROM sys.tables t
JOIN sys.columns c ON c.object_id = t.object_id
JOIN sys.types tp ON tp.user_type_id = c.user_type_id
LEFT JOIN (
    SELECT ic.object_id, ic.column_id
    FROM sys.index_columns ic
    JOIN sys.indexes i ON i.object_id = ic.object_id AND i.index_id = ic.index_id
    WHERE i.is_primary_key = 1
) pk ON pk.object_id = c.object_id AND pk.column_id = c.column_id
LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
WHERE t.is_ms_shipped = 0
ORDER BY 1, 2, c.column_id`

const foreignKeysQuery = `
SET NOCOUNT ON;
SELECT
    SCHEMA_NAME(fk.schema_id),
    OBJECT_NAME(fk.parent_object_id),
    COL_NAME(fkc.parent_object_id, fkc.parent_column_id),
    SCHEMA_NAME(rt.schema_id),
    OBJECT_NAME(fk.referenced_object_id),
    COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id)
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
WHERE fk.is_ms_shipped = 0
ORDER BY 1, 2, fk.name, fkc.constraint_column_id`

// ListTables returns all user tables.
func (e *QueryExecutor) ListTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	tables, err := datasource.ScanAll(ctx, e.conn, listTablesQuery, datasource.ScanTableRow)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// DiscoverSchema introspects every user table. Tables outside "dbo" are
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

	columns, err := datasource.ScanAll(ctx, e.conn, columnsQuery, scanColumn)
	if err != nil {
		return nil, fmt.Errorf("discover columns: %w", err)
	}

	fks, err := datasource.ScanAll(ctx, e.conn, foreignKeysQuery, scanForeignKey)
	if err != nil {
		return nil, fmt.Errorf("discover foreign keys: %w", err)
	}

	return datasource.BuildSchema(names, columns, fks), nil
}

func scanColumn(rows *sql.Rows) (datasource.ColumnMetadata, error) {
	var (
		schemaName, table string
		def               sql.NullString
		c                 datasource.ColumnMetadata
	)
	if err := rows.Scan(&schemaName, &table, &c.ColumnName, &c.DataType, &c.IsNullable, &c.IsPrimaryKey, &def); err != nil {
		return c, err
	}
	c.TableName = qualify(schemaName, table)
	c.DataType = mapSQLServerType(c.DataType)
	if def.Valid {
		c.DefaultValue = &def.String
	}
	return c, nil
}

func scanForeignKey(rows *sql.Rows) (datasource.ForeignKeyMetadata, error) {
	var (
		sourceSchema, sourceTable, targetSchema, targetTable string
		fk                                                   datasource.ForeignKeyMetadata
	)
	if err := rows.Scan(&sourceSchema, &sourceTable, &fk.SourceColumn, &targetSchema, &targetTable, &fk.TargetColumn); err != nil {
		return fk, err
	}
	fk.SourceTable = qualify(sourceSchema, sourceTable)
	fk.TargetTable = qualify(targetSchema, targetTable)
	return fk, nil
}

func qualify(schemaName, table string) string {
	return datasource.TableMetadata{SchemaName: schemaName, TableName: table}.QualifiedName(defaultSchema)
}
