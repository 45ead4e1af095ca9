// Package schema models user-supplied and introspected database schemas.
package schema

import (
	"encoding/json"
	"sort"
)

// Schema is the document shape accepted for upload and produced by
// introspection: {"tables": {<table>: {"columns": {...}, "relationships": [...]}}}.
type Schema struct {
	Tables map[string]Table `json:"tables" yaml:"tables"`
}

// Table holds a table's columns keyed by name and its outgoing relationships.
type Table struct {
	Columns       map[string]Column `json:"columns" yaml:"columns"`
	Relationships []Relationship    `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// Column describes one column. Only Type is required.
type Column struct {
	Type      string `json:"type" yaml:"type"`
	Nullable  *bool  `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Default   any    `json:"default,omitempty" yaml:"default,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty" yaml:"is_primary,omitempty"`
}

// Relationship is a reference from Column to ReferencedTable.ReferencedColumn.
type Relationship struct {
	Column           string `json:"column,omitempty" yaml:"column,omitempty"`
	ReferencedTable  string `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumn string `json:"referenced_column,omitempty" yaml:"referenced_column,omitempty"`
	Type             string `json:"type,omitempty" yaml:"type,omitempty"`
}

// TableNames returns the table names in sorted order.
func (s *Schema) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnNames returns the table's column names in sorted order.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PromptContext renders the schema as compact JSON for inclusion in a
// generation prompt. Map keys are emitted in sorted order.
func (s *Schema) PromptContext() string {
	if s == nil || len(s.Tables) == 0 {
		return ""
	}
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}
