package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteMonthlyExcel renders the monthly report as an xlsx workbook.
func WriteMonthlyExcel(w io.Writer, year, month int, rows []Row) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("bulan tidak valid: %d", month)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%s %d", MonthNames[month-1], year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("ubah nama sheet gagal: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"3B82F6"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("buat style header gagal: %w", err)
	}

	for i, header := range monthlyHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("alamat sel gagal: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("tulis header gagal: %w", err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(monthlyHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("terapkan style header gagal: %w", err)
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row.cells() {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("alamat sel gagal: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("tulis baris gagal: %w", err)
			}
		}
	}

	// Wider columns for the free-text fields.
	if err := f.SetColWidth(sheet, "C", "E", 22); err != nil {
		return fmt.Errorf("atur lebar kolom gagal: %w", err)
	}
	if err := f.SetColWidth(sheet, "H", "I", 48); err != nil {
		return fmt.Errorf("atur lebar kolom gagal: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("tulis workbook gagal: %w", err)
	}
	return nil
}
