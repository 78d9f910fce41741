package ingestion

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdcommons/service/internal/domain"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp csv: %v", err)
	}
	return path
}

func registryWith(shortCodes ...string) map[string]domain.BaseField {
	fields := make(map[string]domain.BaseField, len(shortCodes))
	for _, code := range shortCodes {
		fields[code] = domain.BaseField{ShortCode: code, DataType: domain.BaseFieldDataTypeString}
	}
	return fields
}

func TestReadShortCodes(t *testing.T) {
	path := writeTempCSV(t, "organization_name,proposal_submitter_email\nAcme,someone@example.org\n")

	shortCodes, err := ReadShortCodes(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shortCodes) != 2 || shortCodes[0] != "organization_name" || shortCodes[1] != "proposal_submitter_email" {
		t.Fatalf("unexpected short codes: %v", shortCodes)
	}
}

func TestReadShortCodesEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	if _, err := ReadShortCodes(path); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestReadShortCodesSkipsByteOrderMark(t *testing.T) {
	path := writeTempCSV(t, "\xEF\xBB\xBForganization_name\nAcme\n")

	shortCodes, err := ReadShortCodes(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shortCodes[0] != "organization_name" {
		t.Fatalf("byte order mark not stripped: %q", shortCodes[0])
	}
}

func TestValidateStructure(t *testing.T) {
	path := writeTempCSV(t, "organization_name,organization_tax_id\nAcme,12-3456789\nBeta,98-7654321\n")

	if err := ValidateStructure(path, registryWith("organization_name", "organization_tax_id")); err != nil {
		t.Fatalf("expected valid structure, got %v", err)
	}
}

func TestValidateStructureUnknownShortCode(t *testing.T) {
	path := writeTempCSV(t, "organization_name,mystery_code\nAcme,42\n")

	err := ValidateStructure(path, registryWith("organization_name"))
	if err == nil {
		t.Fatal("expected error for unknown short code")
	}
	if !strings.Contains(err.Error(), "mystery_code") {
		t.Fatalf("error should name the offending code, got %v", err)
	}
}

func TestValidateStructureRaggedRows(t *testing.T) {
	path := writeTempCSV(t, "organization_name,organization_tax_id\nAcme\n")

	err := ValidateStructure(path, registryWith("organization_name", "organization_tax_id"))
	if !errors.Is(err, csv.ErrFieldCount) {
		t.Fatalf("expected field count error, got %v", err)
	}
	if !strings.Contains(err.Error(), "not of equal length") {
		t.Fatalf("error should describe the width mismatch, got %v", err)
	}
}

func TestValidateStructureQuotingError(t *testing.T) {
	path := writeTempCSV(t, "organization_name\nAc\"me\n")

	err := ValidateStructure(path, registryWith("organization_name"))
	if !errors.Is(err, csv.ErrBareQuote) {
		t.Fatalf("expected bare quote error, got %v", err)
	}
	if strings.Contains(err.Error(), "not of equal length") {
		t.Fatalf("quoting errors must not be reported as width mismatches, got %v", err)
	}
}

func TestValidateStructureEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	if err := ValidateStructure(path, registryWith()); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestForEachDataRowPreservesOrder(t *testing.T) {
	path := writeTempCSV(t, "organization_name\nAcme\nBeta\nGamma\n")

	var rows []string
	var numbers []int
	err := ForEachDataRow(path, func(rowNumber int, record []string) error {
		numbers = append(numbers, rowNumber)
		rows = append(rows, record[0])
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 || rows[0] != "Acme" || rows[1] != "Beta" || rows[2] != "Gamma" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	for i, n := range numbers {
		if n != i+1 {
			t.Fatalf("expected 1-based sequential row numbers, got %v", numbers)
		}
	}
}

func TestForEachDataRowStopsOnError(t *testing.T) {
	path := writeTempCSV(t, "organization_name\nAcme\nBeta\n")

	sentinel := errors.New("stop")
	count := 0
	err := ForEachDataRow(path, func(rowNumber int, record []string) error {
		count++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected processing to stop after first row, processed %d", count)
	}
}
