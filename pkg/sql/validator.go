// Package sql validates, normalizes, and rewrites SQL text.
package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

var (
	// ErrEmptyQuery indicates the query has no content after trimming.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")
	// ErrUnterminated indicates an unclosed string literal, quoted identifier, or block comment.
	ErrUnterminated = errors.New("unterminated string literal, quoted identifier, or comment")
	// ErrUnbalancedParentheses indicates mismatched parentheses outside literals.
	ErrUnbalancedParentheses = errors.New("unbalanced parentheses")
)

// DestructiveKeywords are rejected anywhere in the upper-cased query text.
// Matching is a plain substring test with no literal or identifier awareness,
// so 'DROPOFF' inside a string literal is rejected as well.
var DestructiveKeywords = []string{
	"DROP",
	"DELETE FROM",
	"TRUNCATE",
	"ALTER",
	"EXEC",
	"EXECUTE",
}

// ValidationResult contains the normalized SQL and any validation errors.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize checks that the text scans as a single well-formed
// statement and strips the trailing semicolon.
//
// The validation order is:
// 1. Reject empty text
// 2. Strip trailing semicolon and whitespace (normalize)
// 3. Scan for unterminated literals/comments, unbalanced parentheses, and
// semicolons outside literals (multiple statements)
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return ValidationResult{Error: ErrEmptyQuery}
	}

	normalized := stripTrailingSemicolon(sqlQuery)
	if normalized == "" {
		return ValidationResult{Error: ErrEmptyQuery}
	}

	report := scan(normalized)
	switch {
	case report.unterminated:
		return ValidationResult{Error: ErrUnterminated}
	case report.unbalanced || report.depth != 0:
		return ValidationResult{Error: ErrUnbalancedParentheses}
	case report.semicolons > 0:
		return ValidationResult{Error: ErrMultipleStatements}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// CheckQuery fails closed: the error wraps apperrors.ErrValidationRejected
// when the text does not scan or contains a destructive keyword.
func CheckQuery(sqlQuery string) error {
	result := ValidateAndNormalize(sqlQuery)
	if result.Error != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidationRejected, result.Error)
	}

	if keyword := FindDestructiveKeyword(sqlQuery); keyword != "" {
		return fmt.Errorf("%w: contains destructive keyword %q", apperrors.ErrValidationRejected, keyword)
	}
	return nil
}

// Validate reports whether the query passes CheckQuery.
func Validate(sqlQuery string) bool {
	return CheckQuery(sqlQuery) == nil
}

// FindDestructiveKeyword returns the first denylisted keyword present in the
// upper-cased text, or "" if none is present.
func FindDestructiveKeyword(sqlQuery string) string {
	upper := strings.ToUpper(sqlQuery)
	for _, keyword := range DestructiveKeywords {
		if strings.Contains(upper, keyword) {
			return keyword
		}
	}
	return ""
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace after it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")

	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}

	return sqlQuery
}
