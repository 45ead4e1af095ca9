package handlers

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
)

// ShareRequest publishes a history record, by id, with an annotation.
type ShareRequest struct {
	ID         string `json:"id"`
	Annotation string `json:"annotation"`
}

// MetricsResponse is the performance summary.
type MetricsResponse struct {
	preferences.Metrics
	SuccessRate float64 `json:"success_rate"`
}

// PreferencesHandler serves settings, connection profiles, shared queries
// and metrics.
type PreferencesHandler struct {
	prefs   *preferences.Store
	history *history.Store
	session *services.Session
	logger  *zap.Logger
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(
	prefs *preferences.Store,
	historyStore *history.Store,
	session *services.Session,
	logger *zap.Logger,
) *PreferencesHandler {
	return &PreferencesHandler{
		prefs:   prefs,
		history: historyStore,
		session: session,
		logger:  logger.Named("preferences-handler"),
	}
}

// RegisterRoutes registers the preferences routes.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/preferences", h.Get)
	mux.HandleFunc("PUT /api/preferences", h.Update)
	mux.HandleFunc("GET /api/preferences/profiles", h.ListProfiles)
	mux.HandleFunc("POST /api/preferences/profiles", h.AddProfile)
	mux.HandleFunc("GET /api/preferences/shared", h.ListShared)
	mux.HandleFunc("POST /api/preferences/shared", h.Share)
	mux.HandleFunc("GET /api/metrics", h.Metrics)
}

// Get handles GET /api/preferences. Profile passwords are masked.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.prefs.Snapshot())
}

// Update handles PUT /api/preferences with a key/value object. Keys are
// applied in name order and the first invalid one aborts the rest. A
// dialect change also converts the session's last generated query.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if len(req) == 0 {
		writeBadRequest(w, h.logger, "invalid_request", "at least one preference is required")
		return
	}

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var err error
		if key == preferences.KeyDialect {
			name, ok := req[key].(string)
			if !ok {
				writeBadRequest(w, h.logger, "invalid_preference", "dialect must be a string")
				return
			}
			_, err = h.session.SelectDialect(name)
		} else {
			err = h.prefs.Update(key, req[key])
		}
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	writeData(w, h.logger, http.StatusOK, h.prefs.Snapshot())
}

// ListProfiles handles GET /api/preferences/profiles.
func (h *PreferencesHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.prefs.ConnectionProfiles())
}

// AddProfile handles POST /api/preferences/profiles.
func (h *PreferencesHandler) AddProfile(w http.ResponseWriter, r *http.Request) {
	var req preferences.ConnectionProfile
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	profile, err := h.prefs.AddConnectionProfile(req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusCreated, profile)
}

// ListShared handles GET /api/preferences/shared.
func (h *PreferencesHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.prefs.SharedQueries())
}

// Share handles POST /api/preferences/shared.
func (h *PreferencesHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeBadRequest(w, h.logger, "missing_id", "id is required")
		return
	}

	record, err := h.history.Get(req.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	shared, err := h.prefs.AddSharedQuery(record, req.Annotation)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusCreated, shared)
}

// Metrics handles GET /api/metrics.
func (h *PreferencesHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m := h.prefs.Metrics()
	writeData(w, h.logger, http.StatusOK, MetricsResponse{Metrics: m, SuccessRate: m.SuccessRate()})
}
