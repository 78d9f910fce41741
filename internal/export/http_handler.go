package export

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pdcommons/service/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes opportunity export as an HTTP endpoint.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHTTPHandler wraps the service with a GET endpoint.
func NewHTTPHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Export handles GET /opportunities/{opportunityId}/export?format=csv|xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	opportunityID, err := uuid.Parse(chi.URLParam(r, "opportunityId"))
	if err != nil {
		http.Error(w, "opportunityId must be a uuid", http.StatusBadRequest)
		return
	}
	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch format {
	case FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		w.Header().Set("Content-Type", "text/csv")
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "proposals-"+opportunityID.String()+"."+string(format)))

	if err := h.service.ExportOpportunity(r.Context(), opportunityID, format, w); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "opportunity not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to export opportunity", zap.Error(err))
		http.Error(w, "error exporting opportunity", http.StatusInternalServerError)
	}
}
