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

// changemakerRepository implements ChangemakerRepository backed by pgxpool.
type changemakerRepository struct {
	pool *pgxpool.Pool
}

// NewChangemakerRepository creates a new changemaker repository.
func NewChangemakerRepository(pool *pgxpool.Pool) ChangemakerRepository {
	return &changemakerRepository{pool: pool}
}

func (r *changemakerRepository) GetByTaxID(ctx context.Context, taxID string) (domain.Changemaker, error) {
	var changemaker domain.Changemaker
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, tax_id, name, created_at FROM changemakers WHERE tax_id = $1`,
		taxID,
	)
	if err := row.Scan(&changemaker.ID, &changemaker.TaxID, &changemaker.Name, &changemaker.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Changemaker{}, fmt.Errorf("changemaker with tax id %q: %w", taxID, ErrNotFound)
		}
		return domain.Changemaker{}, fmt.Errorf("failed to load changemaker: %w", err)
	}
	return changemaker, nil
}

func (r *changemakerRepository) Create(ctx context.Context, taxID, name string) (domain.Changemaker, error) {
	changemaker := domain.Changemaker{TaxID: taxID, Name: name}
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO changemakers (tax_id, name) VALUES ($1, $2) RETURNING id, created_at`,
		taxID,
		name,
	)
	if err := row.Scan(&changemaker.ID, &changemaker.CreatedAt); err != nil {
		return domain.Changemaker{}, fmt.Errorf("failed to create changemaker: %w", err)
	}
	return changemaker, nil
}

func (r *changemakerRepository) LinkProposal(ctx context.Context, changemakerID, proposalID uuid.UUID) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO changemaker_proposals (changemaker_id, proposal_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		changemakerID,
		proposalID,
	)
	if err != nil {
		return fmt.Errorf("failed to link changemaker to proposal: %w", err)
	}
	return nil
}
