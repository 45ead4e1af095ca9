package sql

import (
	"errors"
	"strings"
	"testing"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

func TestValidateAndNormalize_ValidQueries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select without semicolon",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon and whitespace",
			input:    "SELECT 1;  ",
			expected: "SELECT 1",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  SELECT name FROM users  ",
			expected: "SELECT name FROM users",
		},
		{
			name:     "semicolon inside single quoted string",
			input:    "SELECT * FROM users WHERE name = 'a;b'",
			expected: "SELECT * FROM users WHERE name = 'a;b'",
		},
		{
			name:     "semicolon inside double quoted identifier",
			input:    `SELECT * FROM "table;name"`,
			expected: `SELECT * FROM "table;name"`,
		},
		{
			name:     "semicolon inside backtick identifier",
			input:    "SELECT * FROM `odd;name`",
			expected: "SELECT * FROM `odd;name`",
		},
		{
			name:     "SQL standard escaped single quote",
			input:    "SELECT * FROM users WHERE name = 'O''Brien'",
			expected: "SELECT * FROM users WHERE name = 'O''Brien'",
		},
		{
			name:     "parenthesis inside literal",
			input:    "SELECT COUNT(*) FROM notes WHERE body = ':('",
			expected: "SELECT COUNT(*) FROM notes WHERE body = ':('",
		},
		{
			name:     "line comment with semicolon",
			input:    "SELECT id FROM orders -- latest; newest\nWHERE id > 10",
			expected: "SELECT id FROM orders -- latest; newest\nWHERE id > 10",
		},
		{
			name:     "block comment",
			input:    "SELECT /* hint; ) */ id FROM orders;",
			expected: "SELECT /* hint; ) */ id FROM orders",
		},
		{
			name:     "literal ending in backslash",
			input:    `SELECT * FROM files WHERE path = 'C:\'`,
			expected: `SELECT * FROM files WHERE path = 'C:\'`,
		},
		{
			name:     "escaped backslash",
			input:    `SELECT 'a\\' AS x`,
			expected: `SELECT 'a\\' AS x`,
		},
		{
			name:     "backslash escaped quote",
			input:    `SELECT * FROM users WHERE name = 'O\'Brien; x'`,
			expected: `SELECT * FROM users WHERE name = 'O\'Brien; x'`,
		},
		{
			name:     "dollar quoted body",
			input:    "SELECT $$a;b$$ AS body;",
			expected: "SELECT $$a;b$$ AS body",
		},
		{
			name:     "tagged dollar quote",
			input:    "SELECT $fn$ it's ( ; $fn$",
			expected: "SELECT $fn$ it's ( ; $fn$",
		},
		{
			name:     "positional parameter",
			input:    "SELECT * FROM users WHERE id = $1",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "join with nested subquery",
			input:    "SELECT u.id FROM users u JOIN (SELECT user_id FROM orders) o ON u.id = o.user_id;",
			expected: "SELECT u.id FROM users u JOIN (SELECT user_id FROM orders) o ON u.id = o.user_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			if result.Error != nil {
				t.Errorf("unexpected error: %v", result.Error)
			}
			if result.NormalizedSQL != tt.expected {
				t.Errorf("got %q, want %q", result.NormalizedSQL, tt.expected)
			}
		})
	}
}

func TestValidateAndNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty string", "", ErrEmptyQuery},
		{"whitespace only", "  \n\t ", ErrEmptyQuery},
		{"lone semicolon", ";", ErrEmptyQuery},
		{"two statements", "SELECT 1; SELECT 2", ErrMultipleStatements},
		{"two statements trailing", "SELECT 1; SELECT 2;", ErrMultipleStatements},
		{"unterminated string", "SELECT * FROM users WHERE name = 'bob", ErrUnterminated},
		{"unterminated identifier", `SELECT "name FROM users`, ErrUnterminated},
		{"unterminated block comment", "SELECT 1 /* oops", ErrUnterminated},
		{"unterminated dollar quote", "SELECT $$a; b", ErrUnterminated},
		{"missing close paren", "SELECT COUNT(* FROM users", ErrUnbalancedParentheses},
		{"extra close paren", "SELECT COUNT(*)) FROM users", ErrUnbalancedParentheses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			if !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("got error %v, want %v", result.Error, tt.wantErr)
			}
			if result.NormalizedSQL != "" {
				t.Errorf("expected empty NormalizedSQL on error, got %q", result.NormalizedSQL)
			}
		})
	}
}

func TestValidate_DenylistAnyCase(t *testing.T) {
	templates := []string{
		"%s TABLE users",
		"SELECT * FROM users; %s",
		"SELECT '%s' AS note",
	}

	for _, keyword := range DestructiveKeywords {
		variants := []string{keyword, strings.ToLower(keyword), mixedCase(keyword)}
		for _, variant := range variants {
			for _, tmpl := range templates {
				query := strings.Replace(tmpl, "%s", variant, 1)
				if Validate(query) {
					t.Errorf("Validate(%q) = true, want false", query)
				}
			}
		}
	}
}

func TestValidate_AllowsReadQueries(t *testing.T) {
	queries := []string{
		"SELECT 1",
		"SELECT name, email FROM customers WHERE country = 'DE' ORDER BY name",
		"SELECT c.name, COUNT(o.id) FROM customers c LEFT JOIN orders o ON o.customer_id = c.id GROUP BY c.name",
		"WITH recent AS (SELECT * FROM orders WHERE created_at > NOW()) SELECT * FROM recent;",
		`SELECT * FROM files WHERE path = 'C:\'`,
		`SELECT 'a\\' AS x`,
		"SELECT $$a;b$$",
	}
	for _, q := range queries {
		if !Validate(q) {
			t.Errorf("Validate(%q) = false, want true (err: %v)", q, CheckQuery(q))
		}
	}
}

func TestCheckQuery_WrapsSentinels(t *testing.T) {
	err := CheckQuery("DROP TABLE users")
	if !errors.Is(err, apperrors.ErrValidationRejected) {
		t.Fatalf("expected ErrValidationRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "DROP") {
		t.Errorf("expected keyword in message, got %q", err.Error())
	}

	err = CheckQuery("SELECT 1; SELECT 2")
	if !errors.Is(err, apperrors.ErrValidationRejected) || !errors.Is(err, ErrMultipleStatements) {
		t.Errorf("expected both sentinels in chain, got %v", err)
	}
}

func TestFindDestructiveKeyword_NoLiteralAwareness(t *testing.T) {
	if got := FindDestructiveKeyword("SELECT * FROM shipments WHERE status = 'dropoff'"); got != "DROP" {
		t.Errorf("expected DROP to be found inside literal, got %q", got)
	}
	if got := FindDestructiveKeyword("SELECT id FROM users"); got != "" {
		t.Errorf("expected no keyword, got %q", got)
	}
}

func mixedCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i%2 == 0 {
			b.WriteString(strings.ToLower(string(r)))
		} else {
			b.WriteString(strings.ToUpper(string(r)))
		}
	}
	return b.String()
}
