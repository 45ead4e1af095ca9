package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{"bad request", http.StatusBadRequest, "bad_request", "invalid input"},
		{"not found", http.StatusNotFound, "not_found", "resource not found"},
		{"internal error", http.StatusInternalServerError, "internal_error", "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := ErrorResponse(w, tt.statusCode, tt.errorCode, tt.message)
			if err != nil {
				t.Fatalf("ErrorResponse returned error: %v", err)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.statusCode)
			}

			ct := resp.Header.Get("Content-Type")
			if ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}

			if body["error"] != tt.errorCode {
				t.Errorf("body[error] = %q, want %q", body["error"], tt.errorCode)
			}
			if body["message"] != tt.message {
				t.Errorf("body[message] = %q, want %q", body["message"], tt.message)
			}
		})
	}
}

func TestWriteJSON_Status200(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"key": "value"}

	err := WriteJSON(w, http.StatusOK, data)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()

	// Status 200 is the default for ResponseRecorder, WriteJSON should not call WriteHeader
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["key"] != "value" {
		t.Errorf("body[key] = %q, want %q", body["key"], "value")
	}
}

func TestWriteJSON_NonOKStatus(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]int{"count": 5}

	err := WriteJSON(w, http.StatusCreated, data)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
}

func TestWriteJSON_UnencodableData(t *testing.T) {
	w := httptest.NewRecorder()
	data := make(chan int) // channels cannot be JSON-encoded

	err := WriteJSON(w, http.StatusOK, data)
	if err == nil {
		t.Error("expected error for unencodable data, got nil")
	}
}

func TestWriteError_StatusByKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("query x: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{"validation", fmt.Errorf("%w: empty", apperrors.ErrValidationRejected), http.StatusBadRequest, "validation_rejected"},
		{"dialect", fmt.Errorf("%w: oracle", apperrors.ErrUnsupportedDialect), http.StatusBadRequest, "unsupported_dialect"},
		{"schema", fmt.Errorf("%w: bad", apperrors.ErrSchemaInvalid), http.StatusBadRequest, "schema_invalid"},
		{"profile", fmt.Errorf("%w: missing host", apperrors.ErrInvalidProfile), http.StatusBadRequest, "invalid_profile"},
		{"preference", fmt.Errorf("%w: theme", apperrors.ErrInvalidPreference), http.StatusBadRequest, "invalid_preference"},
		{"execution", fmt.Errorf("%w: connect", apperrors.ErrExecutionFailed), http.StatusBadGateway, "execution_failed"},
		{"generation", fmt.Errorf("%w: timeout", apperrors.ErrGenerationFailed), http.StatusBadGateway, "generation_failed"},
		{"persistence", fmt.Errorf("%w: disk full", apperrors.ErrPersistence), http.StatusInternalServerError, "persistence_failure"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, zap.NewNop(), tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != tt.wantCode {
				t.Errorf("body[error] = %v, want %q", body["error"], tt.wantCode)
			}
			if body["success"] != false {
				t.Errorf("body[success] = %v, want false", body["success"])
			}
		})
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, zap.NewNop(), errors.New("dial tcp postgres://admin:hunter2@db:5432"))

	if strings.Contains(w.Body.String(), "hunter2") {
		t.Errorf("response leaked credentials: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Errorf("expected generic message, got %s", w.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		code   string
	}{
		{"valid", `{"sql":"SELECT 1"}`, true, ""},
		{"empty", ``, false, "invalid_request"},
		{"malformed", `{"sql":`, false, "invalid_request"},
		{"too large", `{"sql":"` + strings.Repeat("a", maxBodyBytes) + `"}`, false, "request_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst SQLRequest
			ok := decodeJSON(w, req, zap.NewNop(), &dst)
			if ok != tt.wantOK {
				t.Fatalf("decodeJSON() = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK {
				if dst.SQL != "SELECT 1" {
					t.Errorf("SQL = %q, want %q", dst.SQL, "SELECT 1")
				}
				return
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("status code = %d, want %d", w.Code, http.StatusBadRequest)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != tt.code {
				t.Errorf("body[error] = %v, want %q", body["error"], tt.code)
			}
		})
	}
}
