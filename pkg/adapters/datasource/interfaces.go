package datasource

import (
	"context"

	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// QueryExecutor runs statements against one open connection.
// Each implementation owns its connection and must be closed when done.
type QueryExecutor interface {
	// Query runs the statement text as-is. A statement that produces no
	// result set yields zero columns and zero rows.
	Query(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)

	// ListTables returns all user tables (excludes system schemas).
	ListTables(ctx context.Context) ([]TableMetadata, error)

	// DiscoverSchema introspects tables, columns and foreign keys.
	DiscoverSchema(ctx context.Context) (*schema.Schema, error)

	// ExplainQuery returns the planner output without executing the statement.
	ExplainQuery(ctx context.Context, sqlQuery string) (*ExplainResult, error)

	// QuoteIdentifier safely quotes a table or column name for this dialect.
	QuoteIdentifier(name string) string

	// Dialect reports which SQL variant the connection speaks.
	Dialect() sqlpkg.Dialect

	// Close releases the connection.
	Close() error
}

// ConnectionConfig is the dialect-neutral connection description.
// DSN, when set, is handed to the driver untouched.
type ConnectionConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	DSN      string
}

// QueryExecutionResult contains the results of a statement.
type QueryExecutionResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// ColumnInfo contains column name and type information from query results.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ColumnNames returns the result's column names in order.
func (r *QueryExecutionResult) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// ExplainResult contains the execution plan and derived hints.
type ExplainResult struct {
	Plan             string   `json:"plan"`
	PerformanceHints []string `json:"performance_hints"`
}

// TableMetadata represents a discovered table.
type TableMetadata struct {
	SchemaName string `json:"schema_name"`
	TableName  string `json:"table_name"`
}

// QualifiedName returns "schema.table", or just the table when the schema
// is the dialect's default.
func (t TableMetadata) QualifiedName(defaultSchema string) string {
	if t.SchemaName == "" || t.SchemaName == defaultSchema {
		return t.TableName
	}
	return t.SchemaName + "." + t.TableName
}

// ColumnMetadata represents a discovered column.
type ColumnMetadata struct {
	TableName    string
	ColumnName   string
	DataType     string
	IsNullable   bool
	IsPrimaryKey bool
	DefaultValue *string
}

// ForeignKeyMetadata represents a discovered single-column foreign key.
type ForeignKeyMetadata struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// BuildSchema assembles introspection rows into a schema document. Tables
// without discovered columns are still listed.
func BuildSchema(tables []string, columns []ColumnMetadata, fks []ForeignKeyMetadata) *schema.Schema {
	s := &schema.Schema{Tables: make(map[string]schema.Table, len(tables))}
	for _, name := range tables {
		s.Tables[name] = schema.Table{Columns: map[string]schema.Column{}}
	}

	for _, c := range columns {
		t, ok := s.Tables[c.TableName]
		if !ok {
			t = schema.Table{Columns: map[string]schema.Column{}}
		}
		nullable := c.IsNullable
		col := schema.Column{Type: c.DataType, Nullable: &nullable, IsPrimary: c.IsPrimaryKey}
		if c.DefaultValue != nil {
			col.Default = *c.DefaultValue
		}
		t.Columns[c.ColumnName] = col
		s.Tables[c.TableName] = t
	}

	for _, fk := range fks {
		t, ok := s.Tables[fk.SourceTable]
		if !ok {
			continue
		}
		t.Relationships = append(t.Relationships, schema.Relationship{
			Column:           fk.SourceColumn,
			ReferencedTable:  fk.TargetTable,
			ReferencedColumn: fk.TargetColumn,
			Type:             "foreign_key",
		})
		s.Tables[fk.SourceTable] = t
	}

	return s
}
