package api

import (
	"strings"
	"testing"
	"time"

	"pengaduan-service/internal/store"
)

func testComplaint() store.Complaint {
	return store.Complaint{
		ID:             "cmpl-1",
		Code:           "PGD250705ABC",
		ReporterName:   "Budi Santoso",
		Email:          "budi@example.com",
		Phone:          "081234567890",
		Classification: "WAKTU_PELAYANAN",
		Description:    "Antrean   pelayanan \n sangat lama.",
		Status:         store.StatusBaru,
		CreatedAt:      time.Date(2025, 7, 5, 8, 30, 0, 0, time.UTC),
	}
}

func TestRenderReceiptMessage(t *testing.T) {
	msg := renderReceiptMessage(testComplaint(), "https://pengaduan.example.id/status?ref=PGD250705ABC", "Jangan balas pesan ini.")

	for _, want := range []string{
		"*Terima kasih, Budi Santoso*",
		"*Kode:* PGD250705ABC",
		"*Klasifikasi:* Waktu Pelayanan",
		"*Deskripsi:* Antrean pelayanan sangat lama.",
		"Lacak Status:",
		"https://pengaduan.example.id/status?ref=PGD250705ABC",
		"Jangan balas pesan ini.",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("pesan tidak memuat %q:\n%s", want, msg)
		}
	}
}

func TestRenderReceiptMessageTruncatesDescription(t *testing.T) {
	c := testComplaint()
	c.Description = strings.Repeat("panjang ", 60)

	msg := renderReceiptMessage(c, "", "footer")
	if !strings.Contains(msg, "...") {
		t.Fatalf("deskripsi panjang tidak dipotong:\n%s", msg)
	}
	if strings.Contains(msg, "Lacak Status:") {
		t.Fatal("tanpa tautan seharusnya tidak ada blok pelacakan")
	}
}

func TestRenderStatusUpdateMessageProses(t *testing.T) {
	c := testComplaint()
	msg := renderStatusUpdateMessage(c, store.StatusProses, "Diteruskan ke bagian layanan.", nil, "", "footer")

	if !strings.Contains(msg, "*Status:* Proses") {
		t.Fatalf("status tidak tampil:\n%s", msg)
	}
	if !strings.Contains(msg, "*RTL:* Diteruskan ke bagian layanan.") {
		t.Fatalf("RTL tidak tampil:\n%s", msg)
	}
}

func TestRenderStatusUpdateMessageSelesai(t *testing.T) {
	c := testComplaint()
	completed := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	msg := renderStatusUpdateMessage(c, store.StatusSelesai, "Sudah ditangani.", &completed, "", "footer")

	if !strings.Contains(msg, "*Ringkasan:* Sudah ditangani.") {
		t.Fatalf("ringkasan tidak tampil:\n%s", msg)
	}
	if !strings.Contains(msg, "Selesai pada: 20/07/2025") {
		t.Fatalf("tanggal selesai tidak tampil:\n%s", msg)
	}
}

func TestStatusKeteranganPrecedence(t *testing.T) {
	c := testComplaint()

	latest := &store.ComplaintUpdate{Note: "Catatan petugas terbaru."}
	if got := statusKeterangan(c, latest); got != "Catatan petugas terbaru." {
		t.Fatalf("catatan terbaru seharusnya menang: %q", got)
	}

	c.RTL = "Rencana tindak lanjut."
	if got := statusKeterangan(c, nil); got != "Rencana tindak lanjut." {
		t.Fatalf("RTL seharusnya dipakai: %q", got)
	}

	c.RTL = ""
	c.Status = store.StatusProses
	if got := statusKeterangan(c, nil); got != "Pengaduan sedang dalam proses penanganan." {
		t.Fatalf("teks generik salah: %q", got)
	}
}
