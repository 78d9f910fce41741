// Package jobs wires the bulk upload pipeline into the river job queue. The
// queue's at-most-once delivery, combined with the processor's PENDING
// guard, is what prevents double-processing of a task.
package jobs

import (
	"context"
	"fmt"

	"github.com/pdcommons/service/internal/ingestion"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// KindProcessBulkUpload identifies the bulk upload ingestion job.
const KindProcessBulkUpload = "process_bulk_upload"

// ProcessBulkUploadArgs is the job payload: the id of the task to process.
type ProcessBulkUploadArgs struct {
	BulkUploadID uuid.UUID `json:"bulkUploadId"`
}

// Kind implements river.JobArgs.
func (ProcessBulkUploadArgs) Kind() string { return KindProcessBulkUpload }

// ProcessBulkUploadWorker hands the payload to the ingestion processor.
type ProcessBulkUploadWorker struct {
	river.WorkerDefaults[ProcessBulkUploadArgs]
	Processor *ingestion.Processor
}

// Work implements river.Worker.
func (w *ProcessBulkUploadWorker) Work(ctx context.Context, job *river.Job[ProcessBulkUploadArgs]) error {
	return w.Processor.Process(ctx, job.Args.BulkUploadID)
}

// NewClient creates a river client with the bulk upload worker registered.
func NewClient(pool *pgxpool.Pool, processor *ingestion.Processor, maxWorkers int) (*river.Client[pgx.Tx], error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	workers := river.NewWorkers()
	river.AddWorker(workers, &ProcessBulkUploadWorker{Processor: processor})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job client: %w", err)
	}
	return client, nil
}

// Migrate provisions the queue's own schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create queue migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("failed to migrate queue schema: %w", err)
	}
	return nil
}

// Queue enqueues ingestion jobs. The API layer depends on this rather than
// on the river client directly.
type Queue struct {
	client *river.Client[pgx.Tx]
}

// NewQueue wraps a river client.
func NewQueue(client *river.Client[pgx.Tx]) *Queue {
	return &Queue{client: client}
}

// EnqueueProcessBulkUpload schedules processing of the given task.
func (q *Queue) EnqueueProcessBulkUpload(ctx context.Context, taskID uuid.UUID) error {
	if _, err := q.client.Insert(ctx, ProcessBulkUploadArgs{BulkUploadID: taskID}, nil); err != nil {
		return fmt.Errorf("failed to enqueue bulk upload job: %w", err)
	}
	return nil
}
