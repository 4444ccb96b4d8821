package report

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"pengaduan-service/internal/store"
)

const templateTitle = "TEMPLATE_LAPORAN"

// SheetsExporter pushes reports into shared Google Sheets workbooks using a
// service account. Every exported tab is cloned from a TEMPLATE_LAPORAN tab
// so the office's formatting survives each export.
type SheetsExporter struct {
	saEmail string
	saKey   string
}

func NewSheetsExporter(saEmail, saKey string) *SheetsExporter {
	return &SheetsExporter{saEmail: saEmail, saKey: saKey}
}

// Configured reports whether service-account credentials are present.
func (e *SheetsExporter) Configured() bool {
	return e.saEmail != "" && e.saKey != ""
}

func (e *SheetsExporter) service(ctx context.Context) (*sheets.Service, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("service account Google belum dikonfigurasi")
	}
	conf := &jwt.Config{
		Email:      e.saEmail,
		PrivateKey: []byte(e.saKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("inisialisasi Sheets gagal: %w", err)
	}
	return svc, nil
}

// ensureTab finds the tab or clones it from the template. Returns whether
// the tab already existed.
func ensureTab(ctx context.Context, svc *sheets.Service, spreadsheetID, title string) (bool, error) {
	meta, err := svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("baca metadata spreadsheet gagal: %w", err)
	}

	var template *sheets.Sheet
	for _, sheet := range meta.Sheets {
		if sheet.Properties == nil {
			continue
		}
		switch sheet.Properties.Title {
		case title:
			return true, nil
		case templateTitle:
			template = sheet
		}
	}

	if template == nil {
		return false, fmt.Errorf("sheet template '%s' tidak ditemukan", templateTitle)
	}

	_, err = svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DuplicateSheet: &sheets.DuplicateSheetRequest{
				SourceSheetId: template.Properties.SheetId,
				NewSheetName:  title,
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("duplikasi template gagal: %w", err)
	}
	return false, nil
}

func batchWrite(ctx context.Context, svc *sheets.Service, spreadsheetID string, data []*sheets.ValueRange) error {
	if len(data) == 0 {
		return nil
	}
	_, err := svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("tulis nilai spreadsheet gagal: %w", err)
	}
	return nil
}

func footnoteValues(notes []string) [][]interface{} {
	values := make([][]interface{}, 0, len(notes))
	for _, note := range notes {
		values = append(values, []interface{}{"*) " + note})
	}
	return values
}

// UpsertMonthly writes one month's complaints to the <BULAN>_<YYYY> tab:
// one row per complaint with a 'v' mark under its classification and status
// columns, then the classification footnotes.
func (e *SheetsExporter) UpsertMonthly(ctx context.Context, spreadsheetID string, year, month int, rows []Row) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("bulan tidak valid: %d", month)
	}
	tabTitle := fmt.Sprintf("%s_%d", strings.ToUpper(MonthNames[month-1]), year)

	svc, err := e.service(ctx)
	if err != nil {
		return "", err
	}

	existed, err := ensureTab(ctx, svc, spreadsheetID, tabTitle)
	if err != nil {
		return "", err
	}
	if existed {
		// Clear the data region generously; the header layout above row 8
		// belongs to the template and stays untouched.
		_, err = svc.Spreadsheets.Values.Clear(spreadsheetID, fmt.Sprintf("%s!A8:S1000", tabTitle), &sheets.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("bersihkan area data gagal: %w", err)
		}
	}

	labelIndex := make(map[string]int, len(store.ClassificationOrder))
	for i, key := range store.ClassificationOrder {
		labelIndex[store.HumanizeClassification(key)] = i
	}

	const dataStartRow = 8
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		classCols := make([]interface{}, len(store.ClassificationOrder))
		for i := range classCols {
			classCols[i] = ""
		}
		if idx, ok := labelIndex[row.Classification]; ok {
			classCols[idx] = "v"
		}

		proses := ""
		selesai := ""
		switch row.Status {
		case "Proses":
			proses = "v"
		case "Selesai":
			selesai = "v"
		}

		cells := []interface{}{
			fmt.Sprintf("%d", row.No),
			formatDate(row.Date),
			row.ReporterName,
			row.Email,
			row.Phone,
			row.Description,
		}
		cells = append(cells, classCols...)
		cells = append(cells,
			row.RTL,
			proses,
			selesai,
			formatDatePtr(row.CompletedAt),
			"Notifikasi sudah dikirimkan ke email/WA pengguna",
		)
		values = append(values, cells)
	}

	data := make([]*sheets.ValueRange, 0, 2)
	if len(values) > 0 {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!A%d:S%d", tabTitle, dataStartRow, dataStartRow+len(values)-1),
			Values: values,
		})
	}

	notes := footnoteValues(ClassificationFootnotes())
	footnoteStart := dataStartRow + len(values) + 1
	data = append(data, &sheets.ValueRange{
		Range:  fmt.Sprintf("%s!A%d:A%d", tabTitle, footnoteStart, footnoteStart+len(notes)-1),
		Values: notes,
	})

	if err := batchWrite(ctx, svc, spreadsheetID, data); err != nil {
		return "", err
	}
	return tabTitle, nil
}

// UpsertAnnual writes the month-by-classification matrix plus the
// PROSES/SELESAI totals into the LAPORAN_<year> tab's C7:L18 region. Month
// labels and numbering are kept by the template.
func (e *SheetsExporter) UpsertAnnual(ctx context.Context, spreadsheetID string, year int, matrix [][]int, statuses []store.MonthStatus) (string, error) {
	if len(matrix) != 12 || len(statuses) != 12 {
		return "", fmt.Errorf("matriks tahunan harus 12 bulan")
	}
	tabTitle := fmt.Sprintf("LAPORAN_%d", year)

	svc, err := e.service(ctx)
	if err != nil {
		return "", err
	}

	if _, err := ensureTab(ctx, svc, spreadsheetID, tabTitle); err != nil {
		return "", err
	}

	values := make([][]interface{}, 0, 12)
	for monthIdx, counts := range matrix {
		cells := make([]interface{}, 0, len(counts)+2)
		for _, count := range counts {
			cells = append(cells, fmt.Sprintf("%d", count))
		}
		cells = append(cells,
			fmt.Sprintf("%d", statuses[monthIdx].Proses),
			fmt.Sprintf("%d", statuses[monthIdx].Selesai),
		)
		values = append(values, cells)
	}

	notes := footnoteValues(ClassificationFootnotes())
	const footnoteStart = 20
	data := []*sheets.ValueRange{
		{
			Range:  fmt.Sprintf("%s!C7:L18", tabTitle),
			Values: values,
		},
		{
			Range:  fmt.Sprintf("%s!A%d:A%d", tabTitle, footnoteStart, footnoteStart+len(notes)-1),
			Values: notes,
		},
	}

	if err := batchWrite(ctx, svc, spreadsheetID, data); err != nil {
		return "", err
	}
	return tabTitle, nil
}
