package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// ListTables returns user tables, skipping sqlite_ internals.
func (e *QueryExecutor) ListTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	names, err := datasource.ScanStrings(ctx, e.conn,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}

	tables := make([]datasource.TableMetadata, len(names))
	for i, n := range names {
		tables[i] = datasource.TableMetadata{SchemaName: "main", TableName: n}
	}
	return tables, nil
}

// DiscoverSchema introspects every user table via the table_info and
// foreign_key_list pragmas.
func (e *QueryExecutor) DiscoverSchema(ctx context.Context) (*schema.Schema, error) {
	tables, err := e.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(tables))
	var columns []datasource.ColumnMetadata
	var fks []datasource.ForeignKeyMetadata
	for i, t := range tables {
		names[i] = t.TableName

		cols, err := e.discoverColumns(ctx, t.TableName)
		if err != nil {
			return nil, err
		}
		columns = append(columns, cols...)

		tableFKs, err := e.discoverForeignKeys(ctx, t.TableName)
		if err != nil {
			return nil, err
		}
		fks = append(fks, tableFKs...)
	}

	return datasource.BuildSchema(names, columns, fks), nil
}

func (e *QueryExecutor) discoverColumns(ctx context.Context, table string) ([]datasource.ColumnMetadata, error) {
	rows, err := e.conn.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var notNull, pk int
		var def sql.NullString
		c := datasource.ColumnMetadata{TableName: table}
		if err := rows.Scan(&c.ColumnName, &c.DataType, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.IsNullable = notNull == 0 && pk == 0
		c.IsPrimaryKey = pk > 0
		if def.Valid {
			c.DefaultValue = &def.String
		}
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

func (e *QueryExecutor) discoverForeignKeys(ctx context.Context, table string) ([]datasource.ForeignKeyMetadata, error) {
	rows, err := e.conn.QueryContext(ctx,
		`SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, table)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	for rows.Next() {
		var to sql.NullString
		fk := datasource.ForeignKeyMetadata{SourceTable: table}
		if err := rows.Scan(&fk.SourceColumn, &fk.TargetTable, &to); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		fk.TargetColumn = to.String
		fks = append(fks, fk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return fks, nil
}
