package domain

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity anchors all proposals materialized from one bulk upload.
type Opportunity struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApplicationForm is the ordered set of fields generated from a CSV header.
type ApplicationForm struct {
	ID            uuid.UUID `json:"id"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ApplicationFormField binds one CSV column to a base field. Position always
// matches the source column index.
type ApplicationFormField struct {
	ID                uuid.UUID `json:"id"`
	ApplicationFormID uuid.UUID `json:"applicationFormId"`
	BaseFieldID       uuid.UUID `json:"baseFieldId"`
	Position          int       `json:"position"`
	Label             string    `json:"label"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Proposal is one submission; bulk uploads create one per CSV data row with
// the 1-based row index as the external id.
type Proposal struct {
	ID            uuid.UUID         `json:"id"`
	OpportunityID uuid.UUID         `json:"opportunityId"`
	ExternalID    string            `json:"externalId"`
	CreatedBy     uuid.UUID         `json:"createdBy"`
	CreatedAt     time.Time         `json:"createdAt"`
	Versions      []ProposalVersion `json:"versions,omitempty"`
}

// ProposalVersion is one data-bearing draft of a proposal. SourceID records
// the upstream data source the version arrived from, when one is known.
type ProposalVersion struct {
	ID                uuid.UUID            `json:"id"`
	ProposalID        uuid.UUID            `json:"proposalId"`
	ApplicationFormID uuid.UUID            `json:"applicationFormId"`
	SourceID          *uuid.UUID           `json:"sourceId"`
	Version           int                  `json:"version"`
	CreatedBy         uuid.UUID            `json:"createdBy"`
	CreatedAt         time.Time            `json:"createdAt"`
	FieldValues       []ProposalFieldValue `json:"fieldValues,omitempty"`
}

// ProposalFieldValue holds one cell's raw data. IsValid records the outcome
// of type validation; it is informational and never blocks ingestion.
type ProposalFieldValue struct {
	ID                     uuid.UUID `json:"id"`
	ProposalVersionID      uuid.UUID `json:"proposalVersionId"`
	ApplicationFormFieldID uuid.UUID `json:"applicationFormFieldId"`
	Value                  string    `json:"value"`
	Position               int       `json:"position"`
	IsValid                bool      `json:"isValid"`
	CreatedAt              time.Time `json:"createdAt"`
}
