package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultHistoryLimit matches the dashboard's recent-history list.
const defaultHistoryLimit = 10

// ParseRecordID extracts and validates a history record ID from the request path.
// Returns the ID and true on success, or "" and false on error
// (after writing an error response).
// Expects path parameter: id
func ParseRecordID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, logger, "invalid_record_id", "Invalid record ID format")
		return "", false
	}
	return id.String(), true
}

// ParseLimit reads the "limit" query parameter. Missing means fallback;
// anything other than a non-negative integer writes a 400.
func ParseLimit(w http.ResponseWriter, r *http.Request, fallback int, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeBadRequest(w, logger, "invalid_limit", "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}
