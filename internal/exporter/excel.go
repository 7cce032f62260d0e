package exporter

import (
	"github.com/xuri/excelize/v2"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

// workbookSheet is the sheet name of exported workbooks.
const workbookSheet = "점유율"

// saveWorkbook writes the table as a single-sheet xlsx workbook.
func saveWorkbook(table domain.ReportTable, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), workbookSheet); err != nil {
		return apperrors.NewIOError("write", path, err)
	}

	header := make([]any, len(tableHeaders))
	for i, h := range tableHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(workbookSheet, "A1", &header); err != nil {
		return apperrors.NewIOError("write", path, err)
	}

	for i, row := range table.Rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewIOError("write", path, err)
		}
		values := []any{row.Prescriber, row.Count, row.Share}
		if err := f.SetSheetRow(workbookSheet, cellName, &values); err != nil {
			return apperrors.NewIOError("write", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewIOError("save", path, err)
	}
	return nil
}
