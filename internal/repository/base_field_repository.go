package repository

import (
	"context"
	"fmt"

	"github.com/pdcommons/service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// baseFieldRepository implements BaseFieldRepository backed by pgxpool.
type baseFieldRepository struct {
	pool *pgxpool.Pool
}

// NewBaseFieldRepository creates a new base field repository.
func NewBaseFieldRepository(pool *pgxpool.Pool) BaseFieldRepository {
	return &baseFieldRepository{pool: pool}
}

func (r *baseFieldRepository) Create(ctx context.Context, field domain.BaseField) (domain.BaseField, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO base_fields (default_label, default_description, short_code, data_type, scope)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		field.DefaultLabel,
		field.DefaultDescription,
		field.ShortCode,
		field.DataType,
		field.Scope,
	)
	if err := row.Scan(&field.ID, &field.CreatedAt); err != nil {
		return domain.BaseField{}, fmt.Errorf("failed to create base field: %w", err)
	}
	return field, nil
}

func (r *baseFieldRepository) List(ctx context.Context) ([]domain.BaseField, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, default_label, default_description, short_code, data_type, scope, created_at
		 FROM base_fields
		 ORDER BY short_code`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list base fields: %w", err)
	}
	defer rows.Close()

	fields := []domain.BaseField{}
	for rows.Next() {
		var field domain.BaseField
		if err := rows.Scan(
			&field.ID,
			&field.DefaultLabel,
			&field.DefaultDescription,
			&field.ShortCode,
			&field.DataType,
			&field.Scope,
			&field.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan base field: %w", err)
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read base fields: %w", err)
	}
	return fields, nil
}
