package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLHandler_Validate(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/validate", SQLRequest{SQL: "SELECT 1;  "})
	require.Equal(t, http.StatusOK, rec.Code)
	var ok ValidateResponse
	resp := decodeEnvelope(t, rec, &ok)
	assert.True(t, resp.Success)
	assert.True(t, ok.Valid)
	assert.Equal(t, "SELECT 1", ok.NormalizedSQL)

	rec = api.do(t, http.MethodPost, "/api/validate", SQLRequest{SQL: "DROP TABLE users"})
	require.Equal(t, http.StatusOK, rec.Code)
	var rejected ValidateResponse
	decodeEnvelope(t, rec, &rejected)
	assert.False(t, rejected.Valid)
	assert.Contains(t, rejected.Reason, "DROP")
}

func TestSQLHandler_Convert(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/convert", SQLRequest{SQL: "SELECT IFNULL(`a`, 0) FROM t", Dialect: "postgres"})
	require.Equal(t, http.StatusOK, rec.Code)
	var converted ConvertResponse
	decodeEnvelope(t, rec, &converted)
	assert.Equal(t, `SELECT COALESCE("a", 0) FROM t`, converted.SQL)
	assert.Equal(t, "postgresql", converted.Dialect)

	// Defaults to the session dialect (sqlite in the fixture).
	rec = api.do(t, http.MethodPost, "/api/convert", SQLRequest{SQL: "SELECT * FROM t WHERE a = TRUE"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &converted)
	assert.Equal(t, "SELECT * FROM t WHERE a = 1", converted.SQL)
	assert.Equal(t, "sqlite", converted.Dialect)
}

func TestSQLHandler_ConvertErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/convert", SQLRequest{SQL: "SELECT 1", Dialect: "oracle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "unsupported_dialect", resp.Error)

	rec = api.do(t, http.MethodPost, "/api/convert", SQLRequest{SQL: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_sql", decodeEnvelope(t, rec, nil).Error)
}

func TestSQLHandler_Suggest(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/suggest", SQLRequest{SQL: "SELECT * FROM users WHERE name LIKE 'a%'"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out SuggestResponse
	decodeEnvelope(t, rec, &out)
	assert.Equal(t, []string{
		"Consider selecting specific columns instead of SELECT *",
		"Consider using exact matching instead of LIKE when possible",
	}, out.Suggestions)

	rec = api.do(t, http.MethodPost, "/api/suggest", SQLRequest{SQL: "SELECT id FROM users"})
	require.Equal(t, http.StatusOK, rec.Code)
	out = SuggestResponse{}
	decodeEnvelope(t, rec, &out)
	assert.NotNil(t, out.Suggestions)
	assert.Empty(t, out.Suggestions)
}

func TestSQLHandler_Dialects(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/dialects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dialects []DialectInfo
	decodeEnvelope(t, rec, &dialects)
	require.Len(t, dialects, 4)

	selected := ""
	for _, d := range dialects {
		if d.Selected {
			selected = d.Name
		}
	}
	assert.Equal(t, "sqlite", selected)
}
