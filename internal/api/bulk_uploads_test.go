package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdcommons/service/internal/auth"
	"github.com/pdcommons/service/internal/domain"
	"github.com/pdcommons/service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubTaskRepo struct {
	created  []domain.BulkUploadTask
	listed   []domain.BulkUploadTask
	lastList struct {
		createdBy *uuid.UUID
		limit     int
		offset    int
	}
}

func (r *stubTaskRepo) Create(ctx context.Context, task domain.BulkUploadTask) (domain.BulkUploadTask, error) {
	task.ID = uuid.New()
	r.created = append(r.created, task)
	return task, nil
}

func (r *stubTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BulkUploadTask, error) {
	return domain.BulkUploadTask{}, repository.ErrNotFound
}

func (r *stubTaskRepo) List(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]domain.BulkUploadTask, int, error) {
	r.lastList.createdBy = createdBy
	r.lastList.limit = limit
	r.lastList.offset = offset
	return r.listed, len(r.listed), nil
}

func (r *stubTaskRepo) Update(ctx context.Context, id uuid.UUID, update repository.BulkUploadTaskUpdate) error {
	return nil
}

type stubEnqueuer struct {
	enqueued []uuid.UUID
	err      error
}

func (q *stubEnqueuer) EnqueueProcessBulkUpload(ctx context.Context, taskID uuid.UUID) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, taskID)
	return nil
}

func authenticatedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(auth.ContextWithUserID(r.Context(), userID))
}

func TestCreateBulkUpload(t *testing.T) {
	tasks := &stubTaskRepo{}
	queue := &stubEnqueuer{}
	handler := NewBulkUploadsHandler(tasks, queue, zap.NewNop())
	userID := uuid.New()

	sourceID := uuid.New()
	w := httptest.NewRecorder()
	handler.Create(w, authenticatedRequest(http.MethodPost, "/bulkUploads",
		`{"fileName":"upload.csv","sourceKey":"unprocessed/abc123","sourceId":"`+sourceID.String()+`"}`, userID))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created domain.BulkUploadTask
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.Status != domain.TaskStatusPending {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}
	if created.SourceID == nil || *created.SourceID != sourceID {
		t.Fatal("expected the source id to be recorded on the task")
	}
	if created.CreatedBy != userID {
		t.Fatal("expected createdBy to be the authenticated user")
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != created.ID {
		t.Fatal("expected the new task to be enqueued")
	}
}

func TestCreateBulkUploadRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing fileName", `{"sourceKey":"unprocessed/abc"}`},
		{"blank fileName", `{"fileName":"  ","sourceKey":"unprocessed/abc"}`},
		{"missing sourceKey", `{"fileName":"upload.csv"}`},
		{"sourceKey outside unprocessed", `{"fileName":"upload.csv","sourceKey":"bulkUploads/abc"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := &stubTaskRepo{}
			queue := &stubEnqueuer{}
			handler := NewBulkUploadsHandler(tasks, queue, zap.NewNop())

			w := httptest.NewRecorder()
			handler.Create(w, authenticatedRequest(http.MethodPost, "/bulkUploads", tc.body, uuid.New()))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if len(tasks.created) != 0 {
				t.Fatal("expected no task to be created")
			}
			if len(queue.enqueued) != 0 {
				t.Fatal("expected nothing to be enqueued")
			}
		})
	}
}

func TestCreateBulkUploadRequiresAuthentication(t *testing.T) {
	handler := NewBulkUploadsHandler(&stubTaskRepo{}, &stubEnqueuer{}, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/bulkUploads",
		strings.NewReader(`{"fileName":"upload.csv","sourceKey":"unprocessed/abc"}`))
	handler.Create(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateBulkUploadEnqueueFailure(t *testing.T) {
	tasks := &stubTaskRepo{}
	queue := &stubEnqueuer{err: fmt.Errorf("queue unavailable")}
	handler := NewBulkUploadsHandler(tasks, queue, zap.NewNop())

	w := httptest.NewRecorder()
	handler.Create(w, authenticatedRequest(http.MethodPost, "/bulkUploads",
		`{"fileName":"upload.csv","sourceKey":"unprocessed/abc"}`, uuid.New()))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestListBulkUploads(t *testing.T) {
	tasks := &stubTaskRepo{listed: []domain.BulkUploadTask{
		{ID: uuid.New(), FileName: "a.csv", Status: domain.TaskStatusCompleted},
		{ID: uuid.New(), FileName: "b.csv", Status: domain.TaskStatusPending},
	}}
	handler := NewBulkUploadsHandler(tasks, &stubEnqueuer{}, zap.NewNop())

	w := httptest.NewRecorder()
	handler.List(w, authenticatedRequest(http.MethodGet, "/bulkUploads?_page=2&_count=10", "", uuid.New()))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if tasks.lastList.limit != 10 || tasks.lastList.offset != 10 {
		t.Fatalf("expected limit=10 offset=10, got limit=%d offset=%d",
			tasks.lastList.limit, tasks.lastList.offset)
	}

	var bundle Bundle[domain.BulkUploadTask]
	if err := json.NewDecoder(w.Body).Decode(&bundle); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if bundle.Total != 2 || len(bundle.Entries) != 2 {
		t.Fatalf("expected bundle of 2, got total=%d entries=%d", bundle.Total, len(bundle.Entries))
	}
}

func TestListBulkUploadsCreatedByMe(t *testing.T) {
	tasks := &stubTaskRepo{}
	handler := NewBulkUploadsHandler(tasks, &stubEnqueuer{}, zap.NewNop())
	userID := uuid.New()

	w := httptest.NewRecorder()
	handler.List(w, authenticatedRequest(http.MethodGet, "/bulkUploads?createdBy=me", "", userID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if tasks.lastList.createdBy == nil || *tasks.lastList.createdBy != userID {
		t.Fatal("expected createdBy=me to resolve to the authenticated user")
	}
}

func TestListBulkUploadsRejectsBadPagination(t *testing.T) {
	handler := NewBulkUploadsHandler(&stubTaskRepo{}, &stubEnqueuer{}, zap.NewNop())

	for _, target := range []string{
		"/bulkUploads?_page=0",
		"/bulkUploads?_page=x",
		"/bulkUploads?_count=-1",
		"/bulkUploads?createdBy=not-a-uuid",
	} {
		w := httptest.NewRecorder()
		handler.List(w, authenticatedRequest(http.MethodGet, target, "", uuid.New()))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestPaginationDefaultsAndCap(t *testing.T) {
	limit, offset, err := paginationParameters(httptest.NewRequest(http.MethodGet, "/bulkUploads", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != defaultPageSize || offset != 0 {
		t.Fatalf("expected defaults %d/0, got %d/%d", defaultPageSize, limit, offset)
	}

	limit, _, err = paginationParameters(httptest.NewRequest(http.MethodGet, "/bulkUploads?_count=1000", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != maxPageSize {
		t.Fatalf("expected _count capped at %d, got %d", maxPageSize, limit)
	}
}
