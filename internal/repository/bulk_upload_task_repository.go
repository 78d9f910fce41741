package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdcommons/service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// bulkUploadTaskRepository implements BulkUploadTaskRepository backed by pgxpool.
type bulkUploadTaskRepository struct {
	pool *pgxpool.Pool
}

// NewBulkUploadTaskRepository creates a new bulk upload task repository.
func NewBulkUploadTaskRepository(pool *pgxpool.Pool) BulkUploadTaskRepository {
	return &bulkUploadTaskRepository{pool: pool}
}

func (r *bulkUploadTaskRepository) Create(ctx context.Context, task domain.BulkUploadTask) (domain.BulkUploadTask, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO bulk_upload_tasks (file_name, source_key, source_id, status, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		task.FileName,
		task.SourceKey,
		task.SourceID,
		task.Status,
		task.CreatedBy,
	)
	if err := row.Scan(&task.ID, &task.CreatedAt); err != nil {
		return domain.BulkUploadTask{}, fmt.Errorf("failed to create bulk upload task: %w", err)
	}
	return task, nil
}

func (r *bulkUploadTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.BulkUploadTask, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, file_name, source_key, source_id, status, file_size, created_by, created_at
		 FROM bulk_upload_tasks
		 WHERE id = $1`,
		id,
	)
	task, err := scanBulkUploadTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BulkUploadTask{}, fmt.Errorf("bulk upload task %s: %w", id, ErrNotFound)
		}
		return domain.BulkUploadTask{}, fmt.Errorf("failed to load bulk upload task: %w", err)
	}
	return task, nil
}

func (r *bulkUploadTaskRepository) List(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]domain.BulkUploadTask, int, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.pool.QueryRow(
		ctx,
		`SELECT count(*) FROM bulk_upload_tasks WHERE $1::uuid IS NULL OR created_by = $1`,
		createdBy,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bulk upload tasks: %w", err)
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_name, source_key, source_id, status, file_size, created_by, created_at
		 FROM bulk_upload_tasks
		 WHERE $1::uuid IS NULL OR created_by = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		createdBy,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bulk upload tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.BulkUploadTask{}
	for rows.Next() {
		task, err := scanBulkUploadTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan bulk upload task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read bulk upload tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *bulkUploadTaskRepository) Update(ctx context.Context, id uuid.UUID, update BulkUploadTaskUpdate) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE bulk_upload_tasks
		 SET status = COALESCE($2::text, status),
		     file_size = COALESCE($3::bigint, file_size),
		     source_key = COALESCE($4::text, source_key)
		 WHERE id = $1`,
		id,
		update.Status,
		update.FileSize,
		update.SourceKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update bulk upload task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bulk upload task %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanBulkUploadTask(row pgx.Row) (domain.BulkUploadTask, error) {
	var task domain.BulkUploadTask
	err := row.Scan(
		&task.ID,
		&task.FileName,
		&task.SourceKey,
		&task.SourceID,
		&task.Status,
		&task.FileSize,
		&task.CreatedBy,
		&task.CreatedAt,
	)
	return task, err
}
