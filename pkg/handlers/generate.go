package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
)

// GenerateHandler serves natural-language to SQL generation.
type GenerateHandler struct {
	assistant services.AssistantService
	logger    *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(assistant services.AssistantService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{assistant: assistant, logger: logger.Named("generate-handler")}
}

// RegisterRoutes registers the generation route.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", h.Generate)
}

// Generate handles POST /api/generate. A classified provider or validation
// failure is returned inside the result with success=true; only bad input
// and store failures produce an error envelope.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.assistant.Generate(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, result)
}
