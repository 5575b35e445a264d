package manifest

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// WriteXLSXFile writes the manifest as a spreadsheet for eyeballing before
// upload. Cells stay strings so postcodes and reference numbers keep their
// leading zeros.
func WriteXLSXFile(path string, template *Template, rows []Row) error {
	for _, row := range rows {
		if err := template.ValidateRow(row); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Manifest"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range template.Headers() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to map header cell: %w", err)
		}
		if err := f.SetCellStr(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		if styleErr := f.SetRowStyle(sheet, 1, 1, headerStyle); styleErr != nil {
			slog.Warn("Failed to style manifest header", "error", styleErr)
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to map cell: %w", err)
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}

	slog.Info("Wrote manifest spreadsheet",
		"path", path,
		"template", template.Name,
		"rows", len(rows))

	return nil
}
