package llm

import (
	"context"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// MockGenerator is a configurable mock for testing generation flows.
// Set the function field to control behavior in tests.
type MockGenerator struct {
	// GenerateSQLFunc is called when GenerateSQL is invoked.
	// If nil, returns Response and nil error.
	GenerateSQLFunc func(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error)

	// Response is returned when GenerateSQLFunc is nil.
	Response string

	// Call tracking for verification
	Calls      int
	LastQuery  string
	LastSchema *schema.Schema
}

// NewMockGenerator creates a mock that always answers with response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// GenerateSQL implements SQLGenerator.
func (m *MockGenerator) GenerateSQL(ctx context.Context, naturalQuery string, s *schema.Schema) (string, error) {
	m.Calls++
	m.LastQuery = naturalQuery
	m.LastSchema = s
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, naturalQuery, s)
	}
	return m.Response, nil
}

// Provider implements SQLGenerator.
func (m *MockGenerator) Provider() string { return "mock" }

// Ensure MockGenerator implements SQLGenerator at compile time.
var _ SQLGenerator = (*MockGenerator)(nil)
