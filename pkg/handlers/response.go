package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
)

// maxBodyBytes bounds JSON request bodies and schema uploads.
const maxBodyBytes = 4 << 20

// ApiResponse is the envelope of every JSON API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, ApiResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeData writes a success envelope around data.
func writeData(w http.ResponseWriter, logger *zap.Logger, statusCode int, data any) {
	if err := WriteJSON(w, statusCode, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeError maps err's sentinel kind to a status code and writes it.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperrors.Kind(err)
	status := statusForKind(kind)
	message := logging.SanitizeError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("kind", kind), logging.Error(err))
		if kind == "internal_error" {
			message = "Internal server error"
		}
	}
	if err := ErrorResponse(w, status, kind, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeBadRequest writes a 400 with the given code.
func writeBadRequest(w http.ResponseWriter, logger *zap.Logger, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

func statusForKind(kind string) int {
	switch kind {
	case "not_found":
		return http.StatusNotFound
	case "validation_rejected", "unsupported_dialect", "schema_invalid", "invalid_profile", "invalid_preference":
		return http.StatusBadRequest
	case "generation_failed", "execution_failed":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a bounded request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeBadRequest(w, logger, "request_too_large", fmt.Sprintf("Request body exceeds %d bytes", maxBodyBytes))
			return false
		}
		if errors.Is(err, io.EOF) {
			writeBadRequest(w, logger, "invalid_request", "Request body is required")
			return false
		}
		writeBadRequest(w, logger, "invalid_request", "Invalid request body")
		return false
	}
	return true
}
