package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pdcommons/service/internal/auth"
	"github.com/pdcommons/service/internal/domain"
	"github.com/pdcommons/service/internal/repository"
	"github.com/pdcommons/service/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enqueuer schedules background processing of a bulk upload task.
type Enqueuer interface {
	EnqueueProcessBulkUpload(ctx context.Context, taskID uuid.UUID) error
}

// BulkUploadsHandler serves the /bulkUploads resource.
type BulkUploadsHandler struct {
	tasks  repository.BulkUploadTaskRepository
	queue  Enqueuer
	logger *zap.Logger
}

// NewBulkUploadsHandler creates the handler.
func NewBulkUploadsHandler(tasks repository.BulkUploadTaskRepository, queue Enqueuer, logger *zap.Logger) *BulkUploadsHandler {
	return &BulkUploadsHandler{tasks: tasks, queue: queue, logger: logger}
}

type createBulkUploadRequest struct {
	FileName  string     `json:"fileName"`
	SourceKey string     `json:"sourceKey"`
	SourceID  *uuid.UUID `json:"sourceId"`
}

// Create handles POST /bulkUploads: persists a PENDING task and enqueues
// its processing job.
func (h *BulkUploadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body createBulkUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.FileName) == "" {
		writeError(w, http.StatusBadRequest, "fileName is required")
		return
	}
	if !strings.HasPrefix(body.SourceKey, storage.UnprocessedKeyPrefix+"/") {
		writeError(w, http.StatusBadRequest,
			"sourceKey must be unprocessed, and begin with '"+storage.UnprocessedKeyPrefix+"/'")
		return
	}

	task, err := h.tasks.Create(r.Context(), domain.BulkUploadTask{
		FileName:  body.FileName,
		SourceKey: body.SourceKey,
		SourceID:  body.SourceID,
		Status:    domain.TaskStatusPending,
		CreatedBy: userID,
	})
	if err != nil {
		h.logger.Error("failed to create bulk upload task", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error creating bulk upload")
		return
	}

	if err := h.queue.EnqueueProcessBulkUpload(r.Context(), task.ID); err != nil {
		h.logger.Error("failed to enqueue bulk upload job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error scheduling bulk upload")
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /bulkUploads with pagination and an optional createdBy filter.
func (h *BulkUploadsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	tasks, total, err := h.tasks.List(r.Context(), createdBy, limit, offset)
	if err != nil {
		h.logger.Error("failed to list bulk upload tasks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error retrieving bulk uploads")
		return
	}
	writeJSON(w, http.StatusOK, Bundle[domain.BulkUploadTask]{Entries: tasks, Total: total})
}
