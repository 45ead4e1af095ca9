package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

const shopSchemaJSON = `{
  "tables": {
    "customers": {
      "columns": {
        "id": {"type": "integer", "is_primary": true},
        "email": {"type": "varchar", "nullable": false}
      }
    },
    "orders": {
      "columns": {
        "id": {"type": "integer"},
        "customer_id": {"type": "integer"},
        "total": {"type": "numeric", "default": 0}
      },
      "relationships": [
        {"column": "customer_id", "referenced_table": "customers", "referenced_column": "id"}
      ]
    }
  }
}`

const shopSchemaYAML = `
tables:
  customers:
    columns:
      id: {type: integer, is_primary: true}
      email: {type: varchar}
  orders:
    columns:
      id: {type: integer}
      customer_id: {type: integer}
    relationships:
      - column: customer_id
        referenced_table: customers
`

func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{"well formed", shopSchemaJSON, true},
		{"no tables", `{"tables": {}}`, true},
		{"missing tables key", `{"schema": {}}`, false},
		{"tables not an object", `{"tables": ["users"]}`, false},
		{"table not an object", `{"tables": {"users": "id"}}`, false},
		{"missing columns", `{"tables": {"users": {"relationships": []}}}`, false},
		{"column not an object", `{"tables": {"users": {"columns": {"id": "integer"}}}}`, false},
		{"column missing type", `{"tables": {"users": {"columns": {"id": {"type": "int"}, "name": {"nullable": true}}}}}`, false},
		{"top level array", `[1, 2]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(decode(t, tt.doc)))
		})
	}
}

func TestParse_JSON(t *testing.T) {
	s, err := Parse([]byte(shopSchemaJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"customers", "orders"}, s.TableNames())
	assert.Equal(t, "varchar", s.Tables["customers"].Columns["email"].Type)
	assert.True(t, s.Tables["customers"].Columns["id"].IsPrimary)
	require.NotNil(t, s.Tables["customers"].Columns["email"].Nullable)
	assert.False(t, *s.Tables["customers"].Columns["email"].Nullable)
	require.Len(t, s.Tables["orders"].Relationships, 1)
	assert.Equal(t, "customers", s.Tables["orders"].Relationships[0].ReferencedTable)
}

func TestParse_YAML(t *testing.T) {
	s, err := Parse([]byte(shopSchemaYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"customers", "orders"}, s.TableNames())
	assert.Equal(t, []string{"customer_id", "id"}, s.Tables["orders"].ColumnNames())
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte(`{"tables": {"t": {"columns": {"c": {}}}}}`), FormatJSON)
	assert.True(t, errors.Is(err, apperrors.ErrSchemaInvalid))

	_, err = Parse([]byte(`{not json`), FormatJSON)
	assert.True(t, errors.Is(err, apperrors.ErrSchemaInvalid))

	_, err = Parse([]byte(shopSchemaJSON), Format("xml"))
	assert.True(t, errors.Is(err, apperrors.ErrSchemaInvalid))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("schema.json", nil))
	assert.Equal(t, FormatYAML, DetectFormat("schema.YML", nil))
	assert.Equal(t, FormatJSON, DetectFormat("", []byte("  {\"tables\": {}}")))
	assert.Equal(t, FormatYAML, DetectFormat("upload", []byte("tables: {}")))
}

func TestPromptContext(t *testing.T) {
	s, err := Parse([]byte(shopSchemaYAML), FormatYAML)
	require.NoError(t, err)

	ctx := s.PromptContext()
	assert.Contains(t, ctx, `"customers"`)
	assert.Contains(t, ctx, `"referenced_table":"customers"`)

	var empty *Schema
	assert.Equal(t, "", empty.PromptContext())
}
