package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/advisor"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// SQLRequest carries a statement for the stateless SQL tools.
type SQLRequest struct {
	SQL     string         `json:"sql"`
	Dialect string         `json:"dialect,omitempty"`
	Schema  *schema.Schema `json:"schema,omitempty"`
}

// ValidateResponse reports the outcome of validation.
type ValidateResponse struct {
	Valid         bool   `json:"valid"`
	NormalizedSQL string `json:"normalized_sql,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// ConvertResponse holds converted SQL.
type ConvertResponse struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect"`
}

// SuggestResponse holds advisor output.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// DialectInfo describes one supported dialect.
type DialectInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Selected    bool   `json:"selected"`
}

// SQLHandler serves validation, conversion and advice.
type SQLHandler struct {
	session *services.Session
	advisor *advisor.Advisor
	logger  *zap.Logger
}

// NewSQLHandler creates a new SQLHandler.
func NewSQLHandler(session *services.Session, logger *zap.Logger) *SQLHandler {
	return &SQLHandler{
		session: session,
		advisor: advisor.New(),
		logger:  logger.Named("sql-handler"),
	}
}

// RegisterRoutes registers the SQL tool routes.
func (h *SQLHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/validate", h.Validate)
	mux.HandleFunc("POST /api/convert", h.Convert)
	mux.HandleFunc("POST /api/suggest", h.Suggest)
	mux.HandleFunc("GET /api/dialects", h.Dialects)
}

// Validate handles POST /api/validate. Rejections are a successful response
// with valid=false.
func (h *SQLHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req SQLRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	resp := ValidateResponse{Valid: true}
	if err := sqlpkg.CheckQuery(req.SQL); err != nil {
		resp = ValidateResponse{Valid: false, Reason: err.Error()}
	} else {
		resp.NormalizedSQL = sqlpkg.ValidateAndNormalize(req.SQL).NormalizedSQL
	}
	writeData(w, h.logger, http.StatusOK, resp)
}

// Convert handles POST /api/convert. The session dialect is the default target.
func (h *SQLHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req SQLRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeBadRequest(w, h.logger, "missing_sql", "sql is required")
		return
	}

	target := h.session.Dialect()
	if req.Dialect != "" {
		d, err := sqlpkg.ParseDialect(req.Dialect)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		target = d
	}

	converted, err := sqlpkg.Convert(req.SQL, target)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, ConvertResponse{SQL: converted, Dialect: string(target)})
}

// Suggest handles POST /api/suggest. The session schema is used when the
// request carries none.
func (h *SQLHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SQLRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	s := req.Schema
	if s == nil {
		s = h.session.Schema()
	}
	writeData(w, h.logger, http.StatusOK, SuggestResponse{Suggestions: h.advisor.Suggest(req.SQL, s)})
}

// Dialects handles GET /api/dialects.
func (h *SQLHandler) Dialects(w http.ResponseWriter, r *http.Request) {
	selected := h.session.Dialect()
	dialects := sqlpkg.Dialects()
	out := make([]DialectInfo, 0, len(dialects))
	for _, d := range dialects {
		out = append(out, DialectInfo{
			Name:        string(d),
			DisplayName: d.DisplayName(),
			Selected:    d == selected,
		})
	}
	writeData(w, h.logger, http.StatusOK, out)
}
