package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, h http.HandlerFunc, method, path string) observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	RequestLogger(zap.New(core))(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	require.Equal(t, 1, logs.Len())
	return logs.All()[0]
}

func TestRequestLogger_Fields(t *testing.T) {
	entry := serveLogged(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}, http.MethodPost, "/api/preferences/profiles")

	assert.Equal(t, "HTTP request", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/preferences/profiles", fields["path"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, int64(16), fields["bytes"])
	assert.Equal(t, "192.0.2.1:1234", fields["remote_addr"])
	assert.Contains(t, fields, "duration")
}

func TestRequestLogger_NilLoggerPassesThrough(t *testing.T) {
	called := false
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.DebugLevel},
		{http.StatusNotFound, zapcore.InfoLevel},
		{http.StatusBadRequest, zapcore.InfoLevel},
		{http.StatusBadGateway, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			entry := serveLogged(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}, http.MethodGet, "/api/history")
			assert.Equal(t, tt.level, entry.Level)
		})
	}
}

func TestRequestLogger_FirstStatusWins(t *testing.T) {
	entry := serveLogged(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.WriteHeader(http.StatusInternalServerError)
	}, http.MethodPost, "/api/convert")

	assert.Equal(t, int64(http.StatusBadRequest), entry.ContextMap()["status"])
}

func TestResponseWriter(t *testing.T) {
	t.Run("implicit status on write", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.True(t, rw.headerWritten)
		assert.Equal(t, http.StatusOK, rw.statusCode)
		assert.Equal(t, 5, rw.written)
	})

	t.Run("duplicate WriteHeader ignored", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusAccepted)
		rw.WriteHeader(http.StatusInternalServerError)
		_, err := rw.Write([]byte("x"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusAccepted, rw.statusCode)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("WriteHeader after Write ignored", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

		_, _ = rw.Write([]byte("x"))
		rw.WriteHeader(http.StatusTeapot)
		assert.Equal(t, http.StatusOK, rw.statusCode)
	})
}
