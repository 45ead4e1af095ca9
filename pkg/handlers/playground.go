package handlers

import (
	"bytes"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/audit"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/playground"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// PlaygroundRequest carries a statement to execute or explain.
type PlaygroundRequest struct {
	SQL string `json:"sql"`
}

// ExportRequest carries a statement whose rows are exported.
type ExportRequest struct {
	SQL    string `json:"sql"`
	Format string `json:"format"`
}

// UseProfileRequest selects a saved connection profile.
type UseProfileRequest struct {
	Name string `json:"name"`
}

// PlaygroundHandler serves the SQL playground and table tools.
type PlaygroundHandler struct {
	playground services.PlaygroundService
	auditor    *audit.SecurityAuditor
	logger     *zap.Logger
}

// NewPlaygroundHandler creates a new PlaygroundHandler. auditor may be nil.
func NewPlaygroundHandler(pg services.PlaygroundService, auditor *audit.SecurityAuditor, logger *zap.Logger) *PlaygroundHandler {
	return &PlaygroundHandler{playground: pg, auditor: auditor, logger: logger.Named("playground-handler")}
}

// RegisterRoutes registers the playground routes.
func (h *PlaygroundHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/playground/execute", h.Execute)
	mux.HandleFunc("POST /api/playground/explain", h.Explain)
	mux.HandleFunc("POST /api/playground/export", h.Export)
	mux.HandleFunc("POST /api/playground/connection", h.UseProfile)
	mux.HandleFunc("GET /api/playground/tables", h.ListTables)
	mux.HandleFunc("GET /api/playground/tables/{name}/preview", h.TablePreview)
	mux.HandleFunc("GET /api/playground/tables/{name}/stats", h.TableStats)
	mux.HandleFunc("GET /api/schema/database", h.DatabaseSchema)
}

// Execute handles POST /api/playground/execute. The outcome is returned with
// success=true whether or not the statement ran; its error field carries the
// classified failure.
func (h *PlaygroundHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req PlaygroundRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	out, err := h.playground.Execute(r.Context(), req.SQL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.auditRejection(r, out)
	writeData(w, h.logger, http.StatusOK, out)
}

// Explain handles POST /api/playground/explain.
func (h *PlaygroundHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req PlaygroundRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	plan, err := h.playground.Explain(r.Context(), req.SQL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, plan)
}

// Export handles POST /api/playground/export, streaming the result rows as
// CSV or XLSX.
func (h *PlaygroundHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	format, err := services.ParseExportFormat(req.Format)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out, err := h.playground.Execute(r.Context(), req.SQL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.auditRejection(r, out)
	if !out.Succeeded() {
		if err := WriteJSON(w, http.StatusUnprocessableEntity, ApiResponse{
			Success: false,
			Error:   "execution_failed",
			Message: out.Error.Message,
			Data:    out,
		}); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	var buf bytes.Buffer
	if err := services.ExportRows(&buf, format, out.Result.ColumnNames(), out.Result.Rows); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAttachment(w, h.logger, format, "query_results", buf.Bytes())
}

// UseProfile handles POST /api/playground/connection.
func (h *PlaygroundHandler) UseProfile(w http.ResponseWriter, r *http.Request) {
	var req UseProfileRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := h.playground.UseProfile(req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, map[string]string{
		"profile": req.Name,
		"dialect": string(h.playground.Dialect()),
	})
}

// ListTables handles GET /api/playground/tables.
func (h *PlaygroundHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.playground.ListTables(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, tables)
}

// TablePreview handles GET /api/playground/tables/{name}/preview.
func (h *PlaygroundHandler) TablePreview(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if h.flagInjection(r, name) {
		writeBadRequest(w, h.logger, "invalid_table", "Invalid table name")
		return
	}
	result, err := h.playground.TablePreview(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, result)
}

// TableStats handles GET /api/playground/tables/{name}/stats.
func (h *PlaygroundHandler) TableStats(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if h.flagInjection(r, name) {
		writeBadRequest(w, h.logger, "invalid_table", "Invalid table name")
		return
	}
	stats, err := h.playground.TableStats(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, stats)
}

// DatabaseSchema handles GET /api/schema/database.
func (h *PlaygroundHandler) DatabaseSchema(w http.ResponseWriter, r *http.Request) {
	s, err := h.playground.DatabaseSchema(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, s)
}

// flagInjection reports whether libinjection flags a table name, auditing
// the attempt when it does.
func (h *PlaygroundHandler) flagInjection(r *http.Request, table string) bool {
	result := sqlpkg.CheckValueForInjection("table", table)
	if result == nil {
		return false
	}
	h.auditor.LogInjectionAttempt(audit.InjectionDetails{
		Field:       result.Name,
		Value:       result.Value,
		Fingerprint: result.Fingerprint,
	}, clientIP(r))
	return true
}

// auditRejection records statements the validator refused before execution.
func (h *PlaygroundHandler) auditRejection(r *http.Request, out *playground.Outcome) {
	if out.Succeeded() || out.Stage != playground.StageReceived {
		return
	}
	h.auditor.LogStatementRejected(out.Query, out.Error.Message, clientIP(r))
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeAttachment(w http.ResponseWriter, logger *zap.Logger, format services.ExportFormat, name string, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+string(format)))
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write export", zap.Error(err))
	}
}
