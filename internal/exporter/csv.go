// Package exporter persists a finished report table to a caller-specified
// path as BOM-prefixed CSV or as an xlsx workbook.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

// tableHeaders are the fixed output column labels.
var tableHeaders = []string{"처방의사", "조제건수", "점유율(%)"}

// SaveTable writes the report table to path, choosing the format by
// extension: ".xlsx" produces a workbook, everything else BOM-prefixed CSV.
// The parent directory is created when absent; creating an existing
// directory is not an error. Failures surface as IOError.
func SaveTable(table domain.ReportTable, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return saveWorkbook(table, path)
	}
	return saveCSV(table, path)
}

// saveCSV writes the table as UTF-8 CSV with a BOM so spreadsheet tools
// recognize the encoding and Korean identities round-trip intact.
func saveCSV(table domain.ReportTable, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewIOError("create", path, err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return apperrors.NewIOError("write", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(tableHeaders); err != nil {
		return apperrors.NewIOError("write", path, err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(Record(row)); err != nil {
			return apperrors.NewIOError("write", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewIOError("flush", path, err)
	}
	return nil
}

// Record formats one table row for delimited output. The share uses the
// shortest representation that parses back to the same float64, so a saved
// table re-parses to identical tuples.
func Record(row domain.SharedRow) []string {
	return []string{
		row.Prescriber,
		strconv.Itoa(row.Count),
		strconv.FormatFloat(row.Share, 'f', -1, 64),
	}
}

// ParseRecord is the inverse of Record.
func ParseRecord(record []string) (domain.SharedRow, error) {
	if len(record) < len(tableHeaders) {
		return domain.SharedRow{}, fmt.Errorf("expected %d fields, got %d", len(tableHeaders), len(record))
	}
	count, err := strconv.Atoi(record[1])
	if err != nil {
		return domain.SharedRow{}, err
	}
	share, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return domain.SharedRow{}, err
	}
	return domain.SharedRow{Prescriber: record[0], Count: count, Share: share}, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewIOError("mkdir", dir, err)
	}
	return nil
}
