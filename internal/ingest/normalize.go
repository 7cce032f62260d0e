package ingest

import (
	"strings"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

// NormalizeLabel cleans a column label for exact-equality comparison:
// newline, carriage-return and tab characters are removed, the result is
// trimmed, and internal spaces are dropped.
func NormalizeLabel(label string) string {
	replacer := strings.NewReplacer("\n", "", "\r", "", "\t", "")
	label = replacer.Replace(label)
	label = strings.TrimSpace(label)
	return strings.ReplaceAll(label, " ", "")
}

// Normalize produces a CleanTable from a RawTable: labels are normalized,
// the grand-total marker row is dropped when a dispensing-date column
// exists, and rows without a prescriber value are discarded so every
// surviving row carries the grouping key. A missing prescriber column is a
// SchemaError; a missing date column only disables the marker filter.
func Normalize(raw domain.RawTable) (domain.CleanTable, error) {
	header := make([]string, len(raw.Header))
	prescriberCol := -1
	dateCol := -1
	for i, label := range raw.Header {
		header[i] = NormalizeLabel(label)
		switch header[i] {
		case domain.ColumnPrescriber:
			if prescriberCol == -1 {
				prescriberCol = i
			}
		case domain.ColumnDispenseDate:
			if dateCol == -1 {
				dateCol = i
			}
		}
	}

	if prescriberCol == -1 {
		return domain.CleanTable{}, apperrors.NewSchemaError(domain.ColumnPrescriber)
	}

	rows := make([][]string, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if dateCol >= 0 && cell(row, dateCol) == domain.GrandTotalMarker {
			continue
		}
		if strings.TrimSpace(cell(row, prescriberCol)) == "" {
			continue
		}
		rows = append(rows, row)
	}

	return domain.CleanTable{
		Header:        header,
		Rows:          rows,
		PrescriberCol: prescriberCol,
		DateCol:       dateCol,
	}, nil
}

// cell returns the value at idx, or "" when the row is too short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
