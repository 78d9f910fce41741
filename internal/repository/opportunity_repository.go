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

// opportunityRepository implements OpportunityRepository backed by pgxpool.
type opportunityRepository struct {
	pool *pgxpool.Pool
}

// NewOpportunityRepository creates a new opportunity repository.
func NewOpportunityRepository(pool *pgxpool.Pool) OpportunityRepository {
	return &opportunityRepository{pool: pool}
}

func (r *opportunityRepository) CreateOpportunity(ctx context.Context, title string) (domain.Opportunity, error) {
	var opportunity domain.Opportunity
	opportunity.Title = title
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO opportunities (title) VALUES ($1) RETURNING id, created_at`,
		title,
	)
	if err := row.Scan(&opportunity.ID, &opportunity.CreatedAt); err != nil {
		return domain.Opportunity{}, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return opportunity, nil
}

func (r *opportunityRepository) GetOpportunity(ctx context.Context, id uuid.UUID) (domain.Opportunity, error) {
	var opportunity domain.Opportunity
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, title, created_at FROM opportunities WHERE id = $1`,
		id,
	)
	if err := row.Scan(&opportunity.ID, &opportunity.Title, &opportunity.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Opportunity{}, fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
		}
		return domain.Opportunity{}, fmt.Errorf("failed to load opportunity: %w", err)
	}
	return opportunity, nil
}

func (r *opportunityRepository) CreateApplicationForm(ctx context.Context, opportunityID uuid.UUID) (domain.ApplicationForm, error) {
	form := domain.ApplicationForm{OpportunityID: opportunityID}
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO application_forms (opportunity_id) VALUES ($1) RETURNING id, created_at`,
		opportunityID,
	)
	if err := row.Scan(&form.ID, &form.CreatedAt); err != nil {
		return domain.ApplicationForm{}, fmt.Errorf("failed to create application form: %w", err)
	}
	return form, nil
}

func (r *opportunityRepository) GetApplicationFormByOpportunity(ctx context.Context, opportunityID uuid.UUID) (domain.ApplicationForm, error) {
	var form domain.ApplicationForm
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, opportunity_id, created_at
		 FROM application_forms
		 WHERE opportunity_id = $1
		 ORDER BY created_at
		 LIMIT 1`,
		opportunityID,
	)
	if err := row.Scan(&form.ID, &form.OpportunityID, &form.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ApplicationForm{}, fmt.Errorf("application form for opportunity %s: %w", opportunityID, ErrNotFound)
		}
		return domain.ApplicationForm{}, fmt.Errorf("failed to load application form: %w", err)
	}
	return form, nil
}

func (r *opportunityRepository) CreateApplicationFormField(ctx context.Context, field domain.ApplicationFormField) (domain.ApplicationFormField, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO application_form_fields (application_form_id, base_field_id, position, label)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		field.ApplicationFormID,
		field.BaseFieldID,
		field.Position,
		field.Label,
	)
	if err := row.Scan(&field.ID, &field.CreatedAt); err != nil {
		return domain.ApplicationFormField{}, fmt.Errorf("failed to create application form field: %w", err)
	}
	return field, nil
}

func (r *opportunityRepository) ListApplicationFormFields(ctx context.Context, applicationFormID uuid.UUID) ([]domain.ApplicationFormField, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, application_form_id, base_field_id, position, label, created_at
		 FROM application_form_fields
		 WHERE application_form_id = $1
		 ORDER BY position`,
		applicationFormID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list application form fields: %w", err)
	}
	defer rows.Close()

	fields := []domain.ApplicationFormField{}
	for rows.Next() {
		var field domain.ApplicationFormField
		if err := rows.Scan(
			&field.ID,
			&field.ApplicationFormID,
			&field.BaseFieldID,
			&field.Position,
			&field.Label,
			&field.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application form field: %w", err)
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read application form fields: %w", err)
	}
	return fields, nil
}
