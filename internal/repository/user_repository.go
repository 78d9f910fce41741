package repository

import (
	"context"
	"fmt"

	"github.com/pdcommons/service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userRepository implements UserRepository backed by pgxpool.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Upsert(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user := domain.User{ID: id}
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (id) VALUES ($1)
		 ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		 RETURNING created_at`,
		id,
	)
	if err := row.Scan(&user.CreatedAt); err != nil {
		return domain.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}
