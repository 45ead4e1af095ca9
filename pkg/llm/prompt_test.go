package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "list users", BuildPrompt("list users", nil))
	assert.Equal(t, "list users", BuildPrompt("list users", &schema.Schema{}))

	s := &schema.Schema{Tables: map[string]schema.Table{
		"users": {Columns: map[string]schema.Column{"id": {Type: "integer"}}},
	}}
	prompt := BuildPrompt("list users", s)
	assert.True(t, strings.HasPrefix(prompt, "list users\nDatabase Schema:\n"))
	assert.Contains(t, prompt, `"users"`)
}

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  SELECT * FROM users  ", "SELECT * FROM users"},
		{"sql fence", "```sql\nSELECT * FROM users\n```", "SELECT * FROM users"},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"fence on one line", "```sql SELECT 1```", "SELECT 1"},
		{"unterminated fence", "```sql\nSELECT 1", "SELECT 1"},
		{"think block", "<think>the user wants users</think>\nSELECT * FROM users", "SELECT * FROM users"},
		{"think then fence", "<think>x</think>```sql\nSELECT 2\n```", "SELECT 2"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSQL(tt.in))
		})
	}
}
