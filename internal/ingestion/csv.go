package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdcommons/service/internal/domain"
)

// ErrEmptyFile is returned when a bulk upload CSV contains no rows at all.
var ErrEmptyFile = errors.New("no short codes detected in the first row of the CSV")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open csv: %w", err)
	}

	buffered := bufio.NewReader(f)
	if prefix, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	// FieldsPerRecord is left at zero so the reader enforces that every row
	// matches the header's column count.
	return csv.NewReader(buffered), f, nil
}

// ReadShortCodes parses the first CSV row as base field short codes.
func ReadShortCodes(path string) ([]string, error) {
	reader, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	record, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(record) == 0 {
		return nil, ErrEmptyFile
	}
	return record, nil
}

// ValidateStructure checks a bulk upload CSV before any database write:
// the header must be present, every short code must refer to a registered
// base field, and every data row must have the header's column count.
func ValidateStructure(path string, fieldsByShortCode map[string]domain.BaseField) error {
	shortCodes, err := ReadShortCodes(path)
	if err != nil {
		return err
	}
	for _, shortCode := range shortCodes {
		if _, ok := fieldsByShortCode[shortCode]; !ok {
			return fmt.Errorf("%q is not a valid base field short code", shortCode)
		}
	}

	reader, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, csv.ErrFieldCount) {
				return fmt.Errorf("csv rows are not of equal length: %w", err)
			}
			return fmt.Errorf("failed to parse csv row: %w", err)
		}
	}
}

// ForEachDataRow streams the CSV's data rows (everything after the header)
// in file order, calling fn with the 1-based row number.
func ForEachDataRow(path string, fn func(rowNumber int, record []string) error) error {
	reader, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyFile
		}
		return fmt.Errorf("failed to read csv header: %w", err)
	}

	rowNumber := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read csv row: %w", err)
		}
		rowNumber++
		if err := fn(rowNumber, record); err != nil {
			return err
		}
	}
}
