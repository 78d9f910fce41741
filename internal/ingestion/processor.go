package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pdcommons/service/internal/domain"
	"github.com/pdcommons/service/internal/repository"
	"github.com/pdcommons/service/internal/storage"
	"github.com/pdcommons/service/pkg/fieldvalidation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Short codes with special meaning to the pipeline: when present, the tax id
// column drives changemaker lookup and the name column supplies the name for
// changemakers created on the fly.
const (
	changemakerTaxIDShortCode = "organization_tax_id"
	changemakerNameShortCode  = "organization_name"
)

// Processor materializes one bulk upload CSV into an opportunity, an
// application form with its fields, and one proposal per data row. It owns
// every status transition of the task it processes.
type Processor struct {
	tasks         repository.BulkUploadTaskRepository
	baseFields    repository.BaseFieldRepository
	opportunities repository.OpportunityRepository
	proposals     repository.ProposalRepository
	changemakers  repository.ChangemakerRepository
	store         storage.ObjectStore
	logger        *zap.Logger
}

// NewProcessor creates a new bulk upload processor.
func NewProcessor(
	tasks repository.BulkUploadTaskRepository,
	baseFields repository.BaseFieldRepository,
	opportunities repository.OpportunityRepository,
	proposals repository.ProposalRepository,
	changemakers repository.ChangemakerRepository,
	store storage.ObjectStore,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		tasks:         tasks,
		baseFields:    baseFields,
		opportunities: opportunities,
		proposals:     proposals,
		changemakers:  changemakers,
		store:         store,
		logger:        logger,
	}
}

// Process runs one bulk upload task end to end. A malformed payload (nil
// task id) is logged and dropped; a task that is no longer PENDING is
// skipped without writes. All business failures end in a FAILED status
// rather than an error return, so the job is never retried by the queue.
func (p *Processor) Process(ctx context.Context, taskID uuid.UUID) error {
	if taskID == uuid.Nil {
		p.logger.Error("malformed bulk upload job payload: missing task id")
		return nil
	}
	p.logger.Debug("started bulk upload processing", zap.String("taskId", taskID.String()))

	task, err := p.tasks.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load bulk upload task: %w", err)
	}
	if task.Status != domain.TaskStatusPending {
		p.logger.Warn(
			"bulk upload task cannot be processed because it is not in a PENDING state",
			zap.String("taskId", task.ID.String()),
			zap.String("status", string(task.Status)),
		)
		return nil
	}
	if !strings.HasPrefix(task.SourceKey, storage.UnprocessedKeyPrefix+"/") {
		p.logger.Info(
			"bulk upload task cannot be processed because its sourceKey is not in the unprocessed namespace",
			zap.String("taskId", task.ID.String()),
			zap.String("sourceKey", task.SourceKey),
		)
		return p.tasks.Update(ctx, task.ID, statusUpdate(domain.TaskStatusFailed))
	}

	localPath, err := p.begin(ctx, task)
	if err != nil {
		p.logger.Warn("download of bulk upload file failed", zap.Error(err))
		return p.tasks.Update(ctx, task.ID, statusUpdate(domain.TaskStatusFailed))
	}

	processingErr := p.ingest(ctx, task, localPath)
	if processingErr != nil {
		p.logger.Info("bulk upload has failed", zap.Error(processingErr))
	}

	p.housekeep(ctx, task, localPath)

	finalStatus := domain.TaskStatusCompleted
	if processingErr != nil {
		finalStatus = domain.TaskStatusFailed
	}
	return p.tasks.Update(ctx, task.ID, statusUpdate(finalStatus))
}

// begin transitions the task to IN_PROGRESS and downloads the source file
// into temporary storage.
func (p *Processor) begin(ctx context.Context, task domain.BulkUploadTask) (string, error) {
	if err := p.tasks.Update(ctx, task.ID, statusUpdate(domain.TaskStatusInProgress)); err != nil {
		return "", err
	}
	return p.store.DownloadToTemp(ctx, task.SourceKey)
}

// ingest performs structural validation, creates the parent records exactly
// once, then streams data rows into proposals. Any error here fails the
// whole batch; per-cell type mismatches do not reach this level.
func (p *Processor) ingest(ctx context.Context, task domain.BulkUploadTask, localPath string) error {
	registered, err := p.baseFields.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load base fields: %w", err)
	}
	byShortCode := make(map[string]domain.BaseField, len(registered))
	for _, field := range registered {
		byShortCode[field.ShortCode] = field
	}

	if err := ValidateStructure(localPath, byShortCode); err != nil {
		return err
	}
	shortCodes, err := ReadShortCodes(localPath)
	if err != nil {
		return err
	}

	opportunity, err := p.opportunities.CreateOpportunity(
		ctx,
		fmt.Sprintf("Bulk Upload (%s)", task.CreatedAt.Format(time.RFC3339)),
	)
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}
	form, err := p.opportunities.CreateApplicationForm(ctx, opportunity.ID)
	if err != nil {
		return fmt.Errorf("failed to create application form: %w", err)
	}

	formFields := make([]domain.ApplicationFormField, len(shortCodes))
	columnFields := make([]domain.BaseField, len(shortCodes))
	for i, shortCode := range shortCodes {
		baseField := byShortCode[shortCode]
		formField, err := p.opportunities.CreateApplicationFormField(ctx, domain.ApplicationFormField{
			ApplicationFormID: form.ID,
			BaseFieldID:       baseField.ID,
			Position:          i,
			Label:             baseField.DefaultLabel,
		})
		if err != nil {
			return fmt.Errorf("failed to create application form field: %w", err)
		}
		formFields[i] = formField
		columnFields[i] = baseField
	}

	taxIDIndex := indexOf(shortCodes, changemakerTaxIDShortCode)
	nameIndex := indexOf(shortCodes, changemakerNameShortCode)

	return ForEachDataRow(localPath, func(rowNumber int, record []string) error {
		values := make([]domain.ProposalFieldValue, 0, len(record))
		for i, cell := range record {
			if i >= len(formFields) {
				return fmt.Errorf("there is no form field associated with column %d", i)
			}
			values = append(values, domain.ProposalFieldValue{
				ApplicationFormFieldID: formFields[i].ID,
				Value:                  cell,
				Position:               i,
				IsValid:                fieldvalidation.IsValid(cell, columnFields[i].DataType),
			})
		}

		// One transaction per row, so a failure never leaves a proposal
		// without its version and values.
		proposal, err := p.proposals.CreateProposal(ctx, domain.Proposal{
			OpportunityID: opportunity.ID,
			ExternalID:    strconv.Itoa(rowNumber),
			CreatedBy:     task.CreatedBy,
			Versions: []domain.ProposalVersion{{
				ApplicationFormID: form.ID,
				SourceID:          task.SourceID,
				Version:           1,
				CreatedBy:         task.CreatedBy,
				FieldValues:       values,
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to create proposal: %w", err)
		}

		return p.linkChangemaker(ctx, record, taxIDIndex, nameIndex, proposal.ID)
	})
}

// linkChangemaker looks up a changemaker by the row's tax id and links it to
// the proposal, creating one first when a name is available. A missing or
// empty tax id silently skips linkage.
func (p *Processor) linkChangemaker(ctx context.Context, record []string, taxIDIndex, nameIndex int, proposalID uuid.UUID) error {
	if taxIDIndex < 0 || taxIDIndex >= len(record) {
		return nil
	}
	taxID := record[taxIDIndex]
	if taxID == "" {
		return nil
	}

	changemaker, err := p.changemakers.GetByTaxID(ctx, taxID)
	if errors.Is(err, repository.ErrNotFound) {
		if nameIndex < 0 || nameIndex >= len(record) || record[nameIndex] == "" {
			return nil
		}
		changemaker, err = p.changemakers.Create(ctx, taxID, record[nameIndex])
	}
	if err != nil {
		return fmt.Errorf("failed to resolve changemaker: %w", err)
	}
	return p.changemakers.LinkProposal(ctx, changemaker.ID, proposalID)
}

// housekeep records the file size, removes the temporary file, and relocates
// the source object into the processed namespace. Each step is independently
// guarded: a failure is logged as a warning and never alters the final
// status determination.
func (p *Processor) housekeep(ctx context.Context, task domain.BulkUploadTask, localPath string) {
	if info, err := os.Stat(localPath); err != nil {
		p.logger.Warn("unable to stat bulk upload file", zap.String("taskId", task.ID.String()), zap.Error(err))
	} else {
		size := info.Size()
		if err := p.tasks.Update(ctx, task.ID, repository.BulkUploadTaskUpdate{FileSize: &size}); err != nil {
			p.logger.Warn("unable to record bulk upload file size", zap.String("taskId", task.ID.String()), zap.Error(err))
		}
	}

	if err := os.Remove(localPath); err != nil {
		p.logger.Warn("cleanup of temporary file failed", zap.String("path", localPath), zap.Error(err))
	}

	processedKey := fmt.Sprintf("%s/%s", storage.BulkUploadsKeyPrefix, task.ID)
	if err := p.store.Move(ctx, task.SourceKey, processedKey); err != nil {
		p.logger.Warn("moving bulk upload file to its processed destination failed", zap.String("taskId", task.ID.String()), zap.Error(err))
		return
	}
	if err := p.tasks.Update(ctx, task.ID, repository.BulkUploadTaskUpdate{SourceKey: &processedKey}); err != nil {
		p.logger.Warn("unable to update bulk upload sourceKey", zap.String("taskId", task.ID.String()), zap.Error(err))
	}
}

func statusUpdate(status domain.TaskStatus) repository.BulkUploadTaskUpdate {
	return repository.BulkUploadTaskUpdate{Status: &status}
}

func indexOf(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}
