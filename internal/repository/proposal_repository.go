package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdcommons/service/internal/db"
	"github.com/pdcommons/service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// proposalRepository implements ProposalRepository backed by pgxpool.
type proposalRepository struct {
	conn *db.Connection
}

// NewProposalRepository creates a new proposal repository.
func NewProposalRepository(conn *db.Connection) ProposalRepository {
	return &proposalRepository{conn: conn}
}

// CreateProposal inserts the proposal, its versions, and their field values
// in one transaction.
func (r *proposalRepository) CreateProposal(ctx context.Context, proposal domain.Proposal) (domain.Proposal, error) {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(
			ctx,
			`INSERT INTO proposals (opportunity_id, external_id, created_by)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at`,
			proposal.OpportunityID,
			proposal.ExternalID,
			proposal.CreatedBy,
		)
		if err := row.Scan(&proposal.ID, &proposal.CreatedAt); err != nil {
			return fmt.Errorf("failed to create proposal: %w", err)
		}

		for vi := range proposal.Versions {
			version := &proposal.Versions[vi]
			version.ProposalID = proposal.ID
			row := tx.QueryRow(
				ctx,
				`INSERT INTO proposal_versions (proposal_id, application_form_id, source_id, version, created_by)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING id, created_at`,
				version.ProposalID,
				version.ApplicationFormID,
				version.SourceID,
				version.Version,
				version.CreatedBy,
			)
			if err := row.Scan(&version.ID, &version.CreatedAt); err != nil {
				return fmt.Errorf("failed to create proposal version: %w", err)
			}

			for fi := range version.FieldValues {
				value := &version.FieldValues[fi]
				value.ProposalVersionID = version.ID
				row := tx.QueryRow(
					ctx,
					`INSERT INTO proposal_field_values (proposal_version_id, application_form_field_id, value, position, is_valid)
					 VALUES ($1, $2, $3, $4, $5)
					 RETURNING id, created_at`,
					value.ProposalVersionID,
					value.ApplicationFormFieldID,
					value.Value,
					value.Position,
					value.IsValid,
				)
				if err := row.Scan(&value.ID, &value.CreatedAt); err != nil {
					return fmt.Errorf("failed to create proposal field value: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return domain.Proposal{}, err
	}
	return proposal, nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Proposal, error) {
	var proposal domain.Proposal
	row := r.conn.Pool.QueryRow(
		ctx,
		`SELECT id, opportunity_id, external_id, created_by, created_at
		 FROM proposals
		 WHERE id = $1`,
		id,
	)
	if err := row.Scan(
		&proposal.ID,
		&proposal.OpportunityID,
		&proposal.ExternalID,
		&proposal.CreatedBy,
		&proposal.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Proposal{}, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
		}
		return domain.Proposal{}, fmt.Errorf("failed to load proposal: %w", err)
	}

	if err := r.attachVersions(ctx, []*domain.Proposal{&proposal}); err != nil {
		return domain.Proposal{}, err
	}
	return proposal, nil
}

func (r *proposalRepository) List(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]domain.Proposal, int, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.conn.Pool.QueryRow(
		ctx,
		`SELECT count(*) FROM proposals WHERE $1::uuid IS NULL OR created_by = $1`,
		createdBy,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT id, opportunity_id, external_id, created_by, created_at
		 FROM proposals
		 WHERE $1::uuid IS NULL OR created_by = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		createdBy,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list proposals: %w", err)
	}
	proposals, err := collectProposals(rows)
	if err != nil {
		return nil, 0, err
	}

	refs := make([]*domain.Proposal, len(proposals))
	for i := range proposals {
		refs[i] = &proposals[i]
	}
	if err := r.attachVersions(ctx, refs); err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (r *proposalRepository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]domain.Proposal, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT id, opportunity_id, external_id, created_by, created_at
		 FROM proposals
		 WHERE opportunity_id = $1
		 ORDER BY created_at`,
		opportunityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals by opportunity: %w", err)
	}
	proposals, err := collectProposals(rows)
	if err != nil {
		return nil, err
	}

	refs := make([]*domain.Proposal, len(proposals))
	for i := range proposals {
		refs[i] = &proposals[i]
	}
	if err := r.attachVersions(ctx, refs); err != nil {
		return nil, err
	}
	return proposals, nil
}

func collectProposals(rows pgx.Rows) ([]domain.Proposal, error) {
	defer rows.Close()

	proposals := []domain.Proposal{}
	for rows.Next() {
		var proposal domain.Proposal
		if err := rows.Scan(
			&proposal.ID,
			&proposal.OpportunityID,
			&proposal.ExternalID,
			&proposal.CreatedBy,
			&proposal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proposals: %w", err)
	}
	return proposals, nil
}

// attachVersions loads versions and field values for the given proposals in
// two set-based queries rather than one query per proposal.
func (r *proposalRepository) attachVersions(ctx context.Context, proposals []*domain.Proposal) error {
	if len(proposals) == 0 {
		return nil
	}

	proposalIDs := make([]uuid.UUID, len(proposals))
	byProposal := make(map[uuid.UUID]*domain.Proposal, len(proposals))
	for i, proposal := range proposals {
		proposalIDs[i] = proposal.ID
		byProposal[proposal.ID] = proposal
	}

	versions, err := r.loadVersions(ctx, proposalIDs)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return nil
	}

	versionIDs := make([]uuid.UUID, len(versions))
	for i, version := range versions {
		versionIDs[i] = version.ID
	}
	valuesByVersion, err := r.loadFieldValues(ctx, versionIDs)
	if err != nil {
		return err
	}

	for i := range versions {
		versions[i].FieldValues = valuesByVersion[versions[i].ID]
	}
	for _, version := range versions {
		proposal := byProposal[version.ProposalID]
		proposal.Versions = append(proposal.Versions, version)
	}
	return nil
}

func (r *proposalRepository) loadVersions(ctx context.Context, proposalIDs []uuid.UUID) ([]domain.ProposalVersion, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT id, proposal_id, application_form_id, source_id, version, created_by, created_at
		 FROM proposal_versions
		 WHERE proposal_id = ANY($1)
		 ORDER BY version`,
		proposalIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposal versions: %w", err)
	}
	defer rows.Close()

	versions := []domain.ProposalVersion{}
	for rows.Next() {
		var version domain.ProposalVersion
		if err := rows.Scan(
			&version.ID,
			&version.ProposalID,
			&version.ApplicationFormID,
			&version.SourceID,
			&version.Version,
			&version.CreatedBy,
			&version.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proposal version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proposal versions: %w", err)
	}
	return versions, nil
}

func (r *proposalRepository) loadFieldValues(ctx context.Context, versionIDs []uuid.UUID) (map[uuid.UUID][]domain.ProposalFieldValue, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT id, proposal_version_id, application_form_field_id, value, position, is_valid, created_at
		 FROM proposal_field_values
		 WHERE proposal_version_id = ANY($1)
		 ORDER BY position`,
		versionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposal field values: %w", err)
	}
	defer rows.Close()

	values := map[uuid.UUID][]domain.ProposalFieldValue{}
	for rows.Next() {
		var value domain.ProposalFieldValue
		if err := rows.Scan(
			&value.ID,
			&value.ProposalVersionID,
			&value.ApplicationFormFieldID,
			&value.Value,
			&value.Position,
			&value.IsValid,
			&value.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proposal field value: %w", err)
		}
		values[value.ProposalVersionID] = append(values[value.ProposalVersionID], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proposal field values: %w", err)
	}
	return values, nil
}
