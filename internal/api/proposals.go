package api

import (
	"errors"
	"net/http"

	"github.com/pdcommons/service/internal/domain"
	"github.com/pdcommons/service/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalsHandler serves the /proposals resource.
type ProposalsHandler struct {
	proposals repository.ProposalRepository
	logger    *zap.Logger
}

// NewProposalsHandler creates the handler.
func NewProposalsHandler(proposals repository.ProposalRepository, logger *zap.Logger) *ProposalsHandler {
	return &ProposalsHandler{proposals: proposals, logger: logger}
}

// List handles GET /proposals with pagination and an optional createdBy filter.
func (h *ProposalsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paginationParameters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	createdBy, err := createdByParameter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	proposals, total, err := h.proposals.List(r.Context(), createdBy, limit, offset)
	if err != nil {
		h.logger.Error("failed to list proposals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error retrieving proposals")
		return
	}
	writeJSON(w, http.StatusOK, Bundle[domain.Proposal]{Entries: proposals, Total: total})
}

// Get handles GET /proposals/{proposalId}.
func (h *ProposalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "proposalId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "proposalId must be a uuid")
		return
	}

	proposal, err := h.proposals.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "proposal not found")
			return
		}
		h.logger.Error("failed to load proposal", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error retrieving proposal")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}
