package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"pengaduan-service/internal/store"
)

func sampleComplaints() []store.Complaint {
	completed := time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC)
	return []store.Complaint{
		{
			Code:           "PGD250705ABC",
			ReporterName:   "Budi Santoso",
			Email:          "budi@example.com",
			Phone:          "081234567890",
			Classification: "SARANA_DAN_PRASARANA",
			Status:         store.StatusSelesai,
			Description:    "Jalan berlubang di RT 03",
			RTL:            "Perbaikan oleh dinas PU",
			CreatedAt:      time.Date(2025, 7, 5, 8, 30, 0, 0, time.UTC),
			CompletedAt:    &completed,
		},
		{
			Code:           "PGD250712XYZ",
			ReporterName:   "Siti Aminah",
			Email:          "siti@example.com",
			Phone:          "081298765432",
			Classification: "WAKTU_PELAYANAN",
			Status:         store.StatusBaru,
			Description:    "Antrean pelayanan terlalu lama",
			CreatedAt:      time.Date(2025, 7, 12, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestRowsFromComplaintsHumanizes(t *testing.T) {
	rows := RowsFromComplaints(sampleComplaints())
	if len(rows) != 2 {
		t.Fatalf("jumlah baris %d", len(rows))
	}
	if rows[0].No != 1 || rows[1].No != 2 {
		t.Fatalf("penomoran salah: %d, %d", rows[0].No, rows[1].No)
	}
	if rows[0].Classification != "Sarana dan Prasarana" {
		t.Fatalf("klasifikasi tidak dihumanisasi: %q", rows[0].Classification)
	}
	if rows[0].Status != "Selesai" {
		t.Fatalf("status tidak dihumanisasi: %q", rows[0].Status)
	}
}

func TestWriteMonthlyCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyCSV(&buf, RowsFromComplaints(sampleComplaints())); err != nil {
		t.Fatalf("tulis CSV gagal: %v", err)
	}

	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("CSV tidak diawali BOM UTF-8")
	}

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	if err != nil {
		t.Fatalf("baca ulang CSV gagal: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("jumlah record %d", len(records))
	}
	if records[0][0] != "No" || records[0][9] != "Tanggal Selesai" {
		t.Fatalf("header salah: %v", records[0])
	}
	if records[1][1] != "5/7/2025" {
		t.Fatalf("format tanggal salah: %q", records[1][1])
	}
	if records[1][9] != "20/7/2025" {
		t.Fatalf("tanggal selesai salah: %q", records[1][9])
	}
	if records[2][9] != "" {
		t.Fatalf("tanggal selesai kosong seharusnya string kosong: %q", records[2][9])
	}
}

func TestMonthlyFilename(t *testing.T) {
	if got := MonthlyFilename(2025, 7, "csv"); got != "laporan-pengaduan-2025-07.csv" {
		t.Fatalf("nama berkas salah: %q", got)
	}
	if got := MonthlyFilename(2025, 11, "xlsx"); got != "laporan-pengaduan-2025-11.xlsx" {
		t.Fatalf("nama berkas salah: %q", got)
	}
}

func TestClassificationFootnotesFollowOrder(t *testing.T) {
	notes := ClassificationFootnotes()
	if len(notes) != len(store.ClassificationOrder) {
		t.Fatalf("jumlah catatan kaki %d", len(notes))
	}
	for i, key := range store.ClassificationOrder {
		if !strings.EqualFold(notes[i], store.HumanizeClassification(key)) {
			t.Fatalf("catatan kaki ke-%d salah: %q", i+1, notes[i])
		}
	}
}
