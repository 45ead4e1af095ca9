package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/retry"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

func testRetryConfig() *retry.Config {
	return &retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestError_IsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want bool
	}{
		{"rate limit", NewError(ErrorTypeRateLimit, "rate limited", nil), true},
		{"server status", &Error{Type: ErrorTypeUnknown, StatusCode: 503}, true},
		{"server error", NewError(ErrorTypeEndpoint, "server error", nil), true},
		{"connection failed", NewError(ErrorTypeEndpoint, "connection failed", nil), true},
		{"timeout", NewError(ErrorTypeEndpoint, "request timeout", nil), false},
		{"not found", NewError(ErrorTypeEndpoint, "endpoint not found", nil), false},
		{"auth", &Error{Type: ErrorTypeAuth, StatusCode: 401}, false},
		{"response", NewError(ErrorTypeResponse, "no choices in response", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsRetryable())
			assert.Equal(t, tt.want, retry.IsRetryable(tt.err))
		})
	}
}

func TestRetryingGenerator_RetriesTransientFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockGenerator("SELECT 1")
	mock.GenerateSQLFunc = func(ctx context.Context, nl string, s *schema.Schema) (string, error) {
		if mock.Calls < 3 {
			return "", &Error{Type: ErrorTypeRateLimit, Message: "rate limited", StatusCode: 429}
		}
		return "SELECT 1", nil
	}

	g := NewRetryingGenerator(mock, testRetryConfig(), zap.New(core))
	out, err := g.GenerateSQL(context.Background(), "one", nil)

	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
	assert.Equal(t, 3, mock.Calls)
	assert.Equal(t, "mock", g.Provider())

	entries := logs.FilterMessage("Retrying generation").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "rate_limit", entries[0].ContextMap()["error_type"])
}

func TestRetryingGenerator_PermanentFailureReturnsImmediately(t *testing.T) {
	mock := NewMockGenerator("")
	mock.GenerateSQLFunc = func(ctx context.Context, nl string, s *schema.Schema) (string, error) {
		return "", &Error{Type: ErrorTypeAuth, Message: "authentication failed", StatusCode: 401}
	}

	g := NewRetryingGenerator(mock, testRetryConfig(), zap.NewNop())
	_, err := g.GenerateSQL(context.Background(), "one", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGenerationFailed))
	assert.Equal(t, ErrorTypeAuth, GetErrorType(err))
	assert.Equal(t, 1, mock.Calls)
}

func TestRetryingGenerator_ExhaustedKeepsClassification(t *testing.T) {
	mock := NewMockGenerator("")
	mock.GenerateSQLFunc = func(ctx context.Context, nl string, s *schema.Schema) (string, error) {
		return "", &Error{Type: ErrorTypeEndpoint, Message: "server error", StatusCode: 502}
	}

	g := NewRetryingGenerator(mock, testRetryConfig(), zap.NewNop())
	_, err := g.GenerateSQL(context.Background(), "one", nil)

	require.Error(t, err)
	assert.Equal(t, ErrorTypeEndpoint, GetErrorType(err))
	assert.Equal(t, 3, mock.Calls)
}
