package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pdcommons/service/internal/domain"
	"github.com/pdcommons/service/internal/repository"

	"go.uber.org/zap"
)

// BaseFieldsHandler serves the /baseFields resource.
type BaseFieldsHandler struct {
	baseFields repository.BaseFieldRepository
	logger     *zap.Logger
}

// NewBaseFieldsHandler creates the handler.
func NewBaseFieldsHandler(baseFields repository.BaseFieldRepository, logger *zap.Logger) *BaseFieldsHandler {
	return &BaseFieldsHandler{baseFields: baseFields, logger: logger}
}

// List handles GET /baseFields.
func (h *BaseFieldsHandler) List(w http.ResponseWriter, r *http.Request) {
	fields, err := h.baseFields.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list base fields", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error retrieving base fields")
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

type createBaseFieldRequest struct {
	DefaultLabel       string `json:"defaultLabel"`
	DefaultDescription string `json:"defaultDescription"`
	ShortCode          string `json:"shortCode"`
	DataType           string `json:"dataType"`
	Scope              string `json:"scope"`
}

// Create handles POST /baseFields.
func (h *BaseFieldsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createBaseFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.DefaultLabel) == "" {
		writeError(w, http.StatusBadRequest, "defaultLabel is required")
		return
	}
	if strings.TrimSpace(body.ShortCode) == "" {
		writeError(w, http.StatusBadRequest, "shortCode is required")
		return
	}
	if !domain.IsValidBaseFieldDataType(body.DataType) {
		writeError(w, http.StatusBadRequest, "dataType is not a recognized value")
		return
	}
	if !domain.IsValidBaseFieldScope(body.Scope) {
		writeError(w, http.StatusBadRequest, "scope is not a recognized value")
		return
	}

	field, err := h.baseFields.Create(r.Context(), domain.BaseField{
		DefaultLabel:       body.DefaultLabel,
		DefaultDescription: body.DefaultDescription,
		ShortCode:          body.ShortCode,
		DataType:           domain.BaseFieldDataType(body.DataType),
		Scope:              domain.BaseFieldScope(body.Scope),
	})
	if err != nil {
		h.logger.Error("failed to create base field", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error creating base field")
		return
	}
	writeJSON(w, http.StatusCreated, field)
}
