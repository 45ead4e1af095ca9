// Package llm turns natural-language requests into SQL text through a hosted
// text-generation provider.
package llm

import (
	"context"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// SQLGenerator defines the interface for text-to-SQL generation.
// Use this interface for dependency injection to enable mocking in tests.
type SQLGenerator interface {
	// GenerateSQL returns cleaned SQL text for the request. s may be nil.
	GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error)

	// Provider names the backend for logs and errors, e.g. "edenai".
	Provider() string
}
