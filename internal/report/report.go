// Package report renders complaint data into the periodic report formats:
// CSV and Excel downloads plus the shared Google Sheets workbooks.
package report

import (
	"fmt"
	"time"

	"pengaduan-service/internal/store"
)

// MonthNames are the Indonesian month labels used in tab titles and dates.
var MonthNames = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Row is one complaint in the monthly report, already humanized.
type Row struct {
	No             int
	Date           time.Time
	ReporterName   string
	Email          string
	Phone          string
	Description    string
	Classification string
	Status         string
	RTL            string
	CompletedAt    *time.Time
}

// Headers for the tabular (CSV/Excel) monthly report.
var monthlyHeaders = []string{
	"No", "Tanggal", "Nama", "Email", "No. WA",
	"Klasifikasi", "Status", "Deskripsi", "RTL", "Tanggal Selesai",
}

// RowsFromComplaints converts store rows to report rows.
func RowsFromComplaints(complaints []store.Complaint) []Row {
	rows := make([]Row, 0, len(complaints))
	for i, c := range complaints {
		rows = append(rows, Row{
			No:             i + 1,
			Date:           c.CreatedAt,
			ReporterName:   c.ReporterName,
			Email:          c.Email,
			Phone:          c.Phone,
			Description:    c.Description,
			Classification: store.HumanizeClassification(c.Classification),
			Status:         store.HumanizeStatus(c.Status),
			RTL:            c.RTL,
			CompletedAt:    c.CompletedAt,
		})
	}
	return rows
}

// ClassificationFootnotes lists the classification labels in report order,
// rendered under the data region of every sheet.
func ClassificationFootnotes() []string {
	notes := make([]string, 0, len(store.ClassificationOrder))
	for _, key := range store.ClassificationOrder {
		notes = append(notes, store.HumanizeClassification(key))
	}
	return notes
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.UTC().Day(), int(t.UTC().Month()), t.UTC().Year())
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func (r Row) cells() []string {
	return []string{
		fmt.Sprintf("%d", r.No),
		formatDate(r.Date),
		r.ReporterName,
		r.Email,
		r.Phone,
		r.Classification,
		r.Status,
		r.Description,
		r.RTL,
		formatDatePtr(r.CompletedAt),
	}
}
