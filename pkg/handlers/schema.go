package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
)

// SchemaValidation reports whether an uploaded document is a valid schema.
type SchemaValidation struct {
	Valid  bool     `json:"valid"`
	Format string   `json:"format"`
	Tables []string `json:"tables,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// SchemaHandler serves schema file upload, validation and graphs. The body
// is the raw JSON or YAML document; ?filename= helps format detection.
type SchemaHandler struct {
	session *services.Session
	logger  *zap.Logger
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(session *services.Session, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{session: session, logger: logger.Named("schema-handler")}
}

// RegisterRoutes registers the schema routes.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/schema/validate", h.Validate)
	mux.HandleFunc("POST /api/schema", h.Load)
	mux.HandleFunc("GET /api/schema", h.Current)
	mux.HandleFunc("POST /api/schema/graph", h.Graph)
}

// Validate handles POST /api/schema/validate without touching the session.
func (h *SchemaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	data, format, ok := h.readDocument(w, r)
	if !ok {
		return
	}

	resp := SchemaValidation{Format: string(format)}
	s, err := schema.Parse(data, format)
	if err != nil {
		resp.Reason = err.Error()
	} else {
		resp.Valid = true
		resp.Tables = s.TableNames()
	}
	writeData(w, h.logger, http.StatusOK, resp)
}

// Load handles POST /api/schema, making the document the session schema.
func (h *SchemaHandler) Load(w http.ResponseWriter, r *http.Request) {
	data, format, ok := h.readDocument(w, r)
	if !ok {
		return
	}
	s, err := h.session.LoadSchema(data, format)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, s)
}

// Current handles GET /api/schema.
func (h *SchemaHandler) Current(w http.ResponseWriter, r *http.Request) {
	s := h.session.Schema()
	if s == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "No schema loaded"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	writeData(w, h.logger, http.StatusOK, s)
}

// Graph handles POST /api/schema/graph. An empty body graphs the session schema.
func (h *SchemaHandler) Graph(w http.ResponseWriter, r *http.Request) {
	data, format, ok := h.readDocument(w, r)
	if !ok {
		return
	}

	var s *schema.Schema
	if len(data) == 0 {
		s = h.session.Schema()
		if s == nil {
			writeBadRequest(w, h.logger, "schema_invalid", "No schema provided or loaded")
			return
		}
	} else {
		parsed, err := schema.Parse(data, format)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		s = parsed
	}
	writeData(w, h.logger, http.StatusOK, schema.BuildGraph(s))
}

func (h *SchemaHandler) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, schema.Format, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeBadRequest(w, h.logger, "request_too_large", fmt.Sprintf("Schema exceeds %d bytes", maxBodyBytes))
			return nil, "", false
		}
		writeBadRequest(w, h.logger, "invalid_request", "Failed to read request body")
		return nil, "", false
	}
	return data, schema.DetectFormat(r.URL.Query().Get("filename"), data), true
}
