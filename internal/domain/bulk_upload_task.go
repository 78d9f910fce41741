package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks a bulk upload task through its one-directional
// lifecycle: PENDING -> IN_PROGRESS -> {COMPLETED | FAILED}.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// BulkUploadTask represents one CSV ingestion request. It is created PENDING
// by the API layer and mutated only by the ingestion processor afterwards.
type BulkUploadTask struct {
	ID        uuid.UUID  `json:"id"`
	FileName  string     `json:"fileName"`
	SourceKey string     `json:"sourceKey"`
	SourceID  *uuid.UUID `json:"sourceId"`
	Status    TaskStatus `json:"status"`
	FileSize  *int64     `json:"fileSize"`
	CreatedBy uuid.UUID  `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
}
