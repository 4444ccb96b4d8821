package api

import (
	"fmt"
	"strings"
	"time"

	"pengaduan-service/internal/store"
)

// renderReceiptMessage builds the WhatsApp confirmation sent right after a
// complaint is accepted.
func renderReceiptMessage(c store.Complaint, trackLink, footer string) string {
	descClean := strings.Join(strings.Fields(c.Description), " ")
	if len([]rune(descClean)) > 200 {
		runes := []rune(descClean)
		descClean = string(runes[:197]) + "..."
	}

	builder := &strings.Builder{}
	fmt.Fprintf(builder, "*Terima kasih, %s*\n", c.ReporterName)
	builder.WriteString("Pengaduan Anda telah *diterima* ✅\n")
	builder.WriteString("\n")
	fmt.Fprintf(builder, "*Kode:* %s\n", c.Code)
	fmt.Fprintf(builder, "*Klasifikasi:* %s\n", store.HumanizeClassification(c.Classification))
	fmt.Fprintf(builder, "*Deskripsi:* %s\n", descClean)
	if trackLink != "" {
		builder.WriteString("\n")
		builder.WriteString("Lacak Status:\n")
		builder.WriteString(trackLink)
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	builder.WriteString(footer)

	return builder.String()
}

// renderStatusUpdateMessage builds the WhatsApp message for a triage update.
func renderStatusUpdateMessage(c store.Complaint, status, rtl string, completedAt *time.Time, trackLink, footer string) string {
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "*Update Pengaduan* (%s)\n", c.Code)
	builder.WriteString("\n")
	fmt.Fprintf(builder, "*Status:* %s\n", store.HumanizeStatus(status))

	trimmedRTL := strings.TrimSpace(rtl)
	if len([]rune(trimmedRTL)) > 300 {
		trimmedRTL = string([]rune(trimmedRTL)[:300])
	}

	switch status {
	case store.StatusProses:
		if trimmedRTL != "" {
			fmt.Fprintf(builder, "*RTL:* %s\n", trimmedRTL)
		}
	case store.StatusSelesai:
		if trimmedRTL != "" {
			fmt.Fprintf(builder, "*Ringkasan:* %s\n", trimmedRTL)
		}
		if completedAt != nil {
			fmt.Fprintf(builder, "Selesai pada: %02d/%02d/%d\n",
				completedAt.Day(), int(completedAt.Month()), completedAt.Year())
		}
	}

	if trackLink != "" {
		builder.WriteString("\n")
		builder.WriteString("Lacak status:\n")
		builder.WriteString(trackLink)
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	builder.WriteString(footer)

	return builder.String()
}

// statusKeterangan derives the public tracking note: the latest triage note
// wins, then the RTL, then a generic text for the current status.
func statusKeterangan(c store.Complaint, latest *store.ComplaintUpdate) string {
	if latest != nil && strings.TrimSpace(latest.Note) != "" {
		return latest.Note
	}
	if strings.TrimSpace(c.RTL) != "" {
		return c.RTL
	}
	switch c.Status {
	case store.StatusBaru:
		return "Pengaduan telah diterima dan menunggu proses tindak lanjut."
	case store.StatusProses:
		return "Pengaduan sedang dalam proses penanganan."
	case store.StatusSelesai:
		return "Pengaduan telah diselesaikan."
	}
	return "Status pengaduan tersedia."
}
