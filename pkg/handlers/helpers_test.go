package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	_ "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource/sqlite"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/audit"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/llm"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/playground"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// testAPI is a fully wired mux over temp-file stores and a sqlite database.
type testAPI struct {
	mux       *http.ServeMux
	history   *history.Store
	prefs     *preferences.Store
	session   *services.Session
	generator *llm.MockGenerator
	audit     *observer.ObservedLogs
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	dsn := filepath.Join(dir, "playground.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT);
		INSERT INTO users (name, email) VALUES ('alice', 'a@example.com'), ('bob', NULL);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	prefs := preferences.Open(filepath.Join(dir, "user_preferences.json"), nil, logger)
	historyStore := history.Open(filepath.Join(dir, "query_history.json"), logger)
	session := services.NewSession(prefs, logger)
	_, err = session.SelectDialect("sqlite")
	require.NoError(t, err)

	generator := llm.NewMockGenerator("SELECT * FROM users")
	assistant := services.NewAssistantService(generator, session, historyStore, prefs, 5*time.Second, logger)

	factory := services.NewExecutorFactory(sqlpkg.SQLite, playground.Options{}, logger)
	pg, err := services.NewPlaygroundService(factory, datasource.ConnectionConfig{DSN: dsn}, session, prefs, logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewSQLHandler(session, logger).RegisterRoutes(mux)
	NewGenerateHandler(assistant, logger).RegisterRoutes(mux)
	auditCore, auditLogs := observer.New(zapcore.DebugLevel)
	NewPlaygroundHandler(pg, audit.NewSecurityAuditor(zap.New(auditCore)), logger).RegisterRoutes(mux)
	NewHistoryHandler(historyStore, logger).RegisterRoutes(mux)
	NewPreferencesHandler(prefs, historyStore, session, logger).RegisterRoutes(mux)
	NewSchemaHandler(session, logger).RegisterRoutes(mux)

	return &testAPI{
		mux:       mux,
		history:   historyStore,
		prefs:     prefs,
		session:   session,
		generator: generator,
		audit:     auditLogs,
	}
}

// do sends body (JSON-encoded unless it is a string) and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope decodes an ApiResponse whose data is unmarshalled into data.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) ApiResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), "body: %s", rec.Body.String())
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return ApiResponse{Success: raw.Success, Error: raw.Error, Message: raw.Message}
}
