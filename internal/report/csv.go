package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteMonthlyCSV streams the monthly report as CSV. A UTF-8 BOM is written
// first so spreadsheet applications detect the encoding.
func WriteMonthlyCSV(w io.Writer, rows []Row) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("tulis BOM gagal: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(monthlyHeaders); err != nil {
		return fmt.Errorf("tulis header CSV gagal: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.cells()); err != nil {
			return fmt.Errorf("tulis baris CSV gagal: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("tulis CSV gagal: %w", err)
	}
	return nil
}

// MonthlyFilename builds the download name, e.g. laporan-pengaduan-2025-07.csv.
func MonthlyFilename(year, month int, ext string) string {
	return fmt.Sprintf("laporan-pengaduan-%04d-%02d.%s", year, month, ext)
}
