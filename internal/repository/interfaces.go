package repository

import (
	"context"
	"errors"

	"github.com/pdcommons/service/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// BaseFieldRepository defines the interface for the base field registry.
type BaseFieldRepository interface {
	Create(ctx context.Context, field domain.BaseField) (domain.BaseField, error)
	List(ctx context.Context) ([]domain.BaseField, error)
}

// BulkUploadTaskUpdate carries a partial field set for a task update; nil
// fields are left untouched.
type BulkUploadTaskUpdate struct {
	Status    *domain.TaskStatus
	FileSize  *int64
	SourceKey *string
}

// BulkUploadTaskRepository defines the interface for bulk upload task operations.
type BulkUploadTaskRepository interface {
	Create(ctx context.Context, task domain.BulkUploadTask) (domain.BulkUploadTask, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.BulkUploadTask, error)
	List(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]domain.BulkUploadTask, int, error)
	Update(ctx context.Context, id uuid.UUID, update BulkUploadTaskUpdate) error
}

// OpportunityRepository defines the interface for opportunities and the
// application forms they anchor.
type OpportunityRepository interface {
	CreateOpportunity(ctx context.Context, title string) (domain.Opportunity, error)
	GetOpportunity(ctx context.Context, id uuid.UUID) (domain.Opportunity, error)
	CreateApplicationForm(ctx context.Context, opportunityID uuid.UUID) (domain.ApplicationForm, error)
	GetApplicationFormByOpportunity(ctx context.Context, opportunityID uuid.UUID) (domain.ApplicationForm, error)
	CreateApplicationFormField(ctx context.Context, field domain.ApplicationFormField) (domain.ApplicationFormField, error)
	ListApplicationFormFields(ctx context.Context, applicationFormID uuid.UUID) ([]domain.ApplicationFormField, error)
}

// ProposalRepository defines the interface for proposals, their versions and
// field values. CreateProposal persists the proposal together with its
// versions and their field values in a single transaction, so a proposal is
// either fully durable or absent.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal domain.Proposal) (domain.Proposal, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Proposal, error)
	List(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]domain.Proposal, int, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]domain.Proposal, error)
}

// ChangemakerRepository defines the interface for changemaker lookups and
// proposal linkage.
type ChangemakerRepository interface {
	GetByTaxID(ctx context.Context, taxID string) (domain.Changemaker, error)
	Create(ctx context.Context, taxID, name string) (domain.Changemaker, error)
	LinkProposal(ctx context.Context, changemakerID, proposalID uuid.UUID) error
}

// UserRepository defines the interface for user records.
type UserRepository interface {
	Upsert(ctx context.Context, id uuid.UUID) (domain.User, error)
}
