package stats

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

var exportHeader = []interface{}{
	"Last name", "First name", "Email", "Attempts",
	"Correct", "Wrong", "Percent correct", "Avg time (s)",
}

// ExportCohortXLSX writes rows as a spreadsheet, one student per row in the
// given order. Missing aggregates are left blank.
func ExportCohortXLSX(rows []StudentRow, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.LastName, row.FirstName, row.Email, row.Attempts,
			row.TotalCorrect, row.TotalWrong, optional(row.PercentCorrect), optional(row.AvgTime),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "C", 24); err != nil {
		return err
	}

	return f.Write(w)
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
