package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteMonthlyExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyExcel(&buf, 2025, 7, RowsFromComplaints(sampleComplaints())); err != nil {
		t.Fatalf("tulis workbook gagal: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("buka ulang workbook gagal: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Juli 2025" {
		t.Fatalf("nama sheet salah: %v", sheets)
	}

	rows, err := f.GetRows("Juli 2025")
	if err != nil {
		t.Fatalf("baca baris gagal: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("jumlah baris %d", len(rows))
	}
	if rows[0][0] != "No" || rows[0][5] != "Klasifikasi" {
		t.Fatalf("header salah: %v", rows[0])
	}
	if rows[1][2] != "Budi Santoso" || rows[2][6] != "Baru" {
		t.Fatalf("isi salah: %v / %v", rows[1], rows[2])
	}
}

func TestWriteMonthlyExcelRejectsInvalidMonth(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyExcel(&buf, 2025, 13, nil); err == nil {
		t.Fatal("bulan 13 seharusnya ditolak")
	}
}
