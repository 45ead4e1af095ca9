package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
)

// FavoriteRequest identifies a history record by timestamp.
type FavoriteRequest struct {
	Timestamp string `json:"timestamp"`
}

// FavoriteResponse reports the new favorite state.
type FavoriteResponse struct {
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
}

// HistoryHandler serves the query history.
type HistoryHandler struct {
	history *history.Store
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store *history.Store, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: store, logger: logger.Named("history-handler")}
}

// RegisterRoutes registers the history routes.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", h.Recent)
	mux.HandleFunc("GET /api/history/search", h.Search)
	mux.HandleFunc("GET /api/history/favorites", h.Favorites)
	mux.HandleFunc("POST /api/history/favorite", h.ToggleFavorite)
	mux.HandleFunc("GET /api/history/export", h.Export)
	mux.HandleFunc("GET /api/history/{id}", h.Get)
}

// Recent handles GET /api/history?limit=N, newest first.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := ParseLimit(w, r, defaultHistoryLimit, h.logger)
	if !ok {
		return
	}
	writeData(w, h.logger, http.StatusOK, h.history.Recent(limit))
}

// Search handles GET /api/history/search?q=...&dialect=...
func (h *HistoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := strings.TrimSpace(q.Get("q"))
	if keyword == "" {
		writeBadRequest(w, h.logger, "missing_keyword", "q is required")
		return
	}
	writeData(w, h.logger, http.StatusOK, h.history.Search(keyword, q.Get("dialect")))
}

// Favorites handles GET /api/history/favorites.
func (h *HistoryHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.history.Favorites())
}

// Get handles GET /api/history/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRecordID(w, r, h.logger)
	if !ok {
		return
	}
	record, err := h.history.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, record)
}

// ToggleFavorite handles POST /api/history/favorite. An unknown timestamp
// is a 404.
func (h *HistoryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if req.Timestamp == "" {
		writeBadRequest(w, h.logger, "missing_timestamp", "timestamp is required")
		return
	}

	state, err := h.history.ToggleFavorite(req.Timestamp)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if state == history.FavoriteNotFound {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "No query with that timestamp"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	writeData(w, h.logger, http.StatusOK, FavoriteResponse{Timestamp: req.Timestamp, State: state.String()})
}

// Export handles GET /api/history/export?format=csv|xlsx.
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := services.ExportHistory(&buf, format, h.history.All()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAttachment(w, h.logger, format, "query_history", buf.Bytes())
}
