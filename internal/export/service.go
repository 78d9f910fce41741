// Package export renders an opportunity's proposals as a spreadsheet, one
// row per proposal in the application form's column order.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/pdcommons/service/internal/domain"
	"github.com/pdcommons/service/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats the exporter does not produce.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat resolves a format query value, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch raw {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX):
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
	}
}

// Service loads an opportunity's proposals and writes them out.
type Service struct {
	opportunities repository.OpportunityRepository
	proposals     repository.ProposalRepository
}

// NewService creates a new export service.
func NewService(opportunities repository.OpportunityRepository, proposals repository.ProposalRepository) *Service {
	return &Service{opportunities: opportunities, proposals: proposals}
}

// ExportOpportunity writes all proposals of the opportunity to w in the
// requested format. The header row carries the application form's field
// labels in position order; each proposal contributes its first version's
// field values.
func (s *Service) ExportOpportunity(ctx context.Context, opportunityID uuid.UUID, format Format, w io.Writer) error {
	if _, err := s.opportunities.GetOpportunity(ctx, opportunityID); err != nil {
		return err
	}
	form, err := s.opportunities.GetApplicationFormByOpportunity(ctx, opportunityID)
	if err != nil {
		return err
	}
	fields, err := s.opportunities.ListApplicationFormFields(ctx, form.ID)
	if err != nil {
		return err
	}
	proposals, err := s.proposals.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		return err
	}

	rows := buildRows(fields, proposals)
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func buildRows(fields []domain.ApplicationFormField, proposals []domain.Proposal) [][]string {
	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Label
	}

	rows := [][]string{header}
	for _, proposal := range proposals {
		row := make([]string, len(fields))
		if len(proposal.Versions) > 0 {
			for _, value := range proposal.Versions[0].FieldValues {
				if value.Position >= 0 && value.Position < len(row) {
					row[value.Position] = value.Value
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to compute cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
