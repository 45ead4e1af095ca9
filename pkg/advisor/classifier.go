package advisor

import (
	"regexp"
	"strings"
)

// Error categories, in match order.
const (
	CategorySyntax        = "syntax"
	CategoryMissingTable  = "missing_table"
	CategoryMissingColumn = "missing_column"
	CategoryAmbiguous     = "ambiguous"
	CategoryDataType      = "data_type"
	CategoryUnknown       = "unknown"
)

// UnknownSuggestion accompanies messages no pattern recognizes.
const UnknownSuggestion = "No specific suggestion available"

// Classification is the user-facing triple for a failure: the raw message,
// a severity colour tag, and one actionable suggestion.
type Classification struct {
	Message    string `json:"message"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion"`
}

type errorPattern struct {
	category   string
	pattern    *regexp.Regexp
	severity   string
	suggestion string
}

var errorPatterns = []errorPattern{
	{CategorySyntax, regexp.MustCompile(`syntax error`), "red", "Check for missing semicolons, brackets, or keywords"},
	{CategoryMissingTable, regexp.MustCompile(`table .* does not exist`), "orange", "Verify table name and ensure it exists in the database"},
	{CategoryMissingColumn, regexp.MustCompile(`column .* does not exist`), "yellow", "Verify column name and check table schema"},
	{CategoryAmbiguous, regexp.MustCompile(`ambiguous column`), "purple", "Specify table name for ambiguous column references"},
	{CategoryDataType, regexp.MustCompile(`data type mismatch`), "blue", "Ensure data types match in comparisons and assignments"},
}

// Classify matches the lower-cased message against the fixed patterns; the
// first match wins. The message itself is returned unchanged.
func Classify(message string) Classification {
	lower := strings.ToLower(message)
	for _, p := range errorPatterns {
		if p.pattern.MatchString(lower) {
			return Classification{
				Message:    message,
				Category:   p.category,
				Severity:   p.severity,
				Suggestion: p.suggestion,
			}
		}
	}
	return Classification{
		Message:    message,
		Category:   CategoryUnknown,
		Severity:   "gray",
		Suggestion: UnknownSuggestion,
	}
}
