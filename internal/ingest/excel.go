package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

// xlsxMagic is the ZIP local-file signature every xlsx workbook starts with.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// IsWorkbook reports whether data looks like an xlsx workbook rather than
// delimited text.
func IsWorkbook(data []byte) bool {
	return bytes.HasPrefix(data, xlsxMagic)
}

// ReadWorkbook parses an xlsx dispensing export into a RawTable using the
// same row convention as ReadCSV: first row of the first sheet is preamble,
// second row is the header. Workbook cells arrive decoded, so only parse
// failures apply here.
func ReadWorkbook(data []byte) (domain.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.RawTable{}, apperrors.NewParseError(fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.RawTable{}, apperrors.NewParseError(fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.RawTable{}, apperrors.NewParseError(fmt.Errorf("read sheet %s: %w", sheets[0], err))
	}
	if len(rows) < 2 {
		return domain.RawTable{}, apperrors.NewParseError(
			fmt.Errorf("expected a preamble row and a header row, got %d rows", len(rows)))
	}

	return domain.RawTable{
		Header: rows[1],
		Rows:   rows[2:],
	}, nil
}

// Read dispatches on the payload shape: xlsx workbooks go through
// ReadWorkbook, everything else is treated as delimited text.
func Read(data []byte) (domain.RawTable, error) {
	if IsWorkbook(data) {
		return ReadWorkbook(data)
	}
	return ReadCSV(data)
}
