package store

import (
	"context"
	"fmt"
	"time"
)

// YearStats is the per-status count for one calendar year.
type YearStats struct {
	Year    int
	Total   int
	Baru    int
	Proses  int
	Selesai int
}

// MonthCount is one month's complaint total (month is 1-12).
type MonthCount struct {
	Month int
	Count int
}

// ClassificationCount is one classification's yearly total.
type ClassificationCount struct {
	Key   string
	Label string
	Count int
}

func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// StatsByYear counts complaints per status within one calendar year.
func (s *Store) StatsByYear(ctx context.Context, year int) (YearStats, error) {
	start, end := yearBounds(year)

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM complaints
		 WHERE created_at >= $1 AND created_at < $2 GROUP BY status`,
		start, end,
	)
	if err != nil {
		return YearStats{}, fmt.Errorf("statistik tahunan gagal: %w", err)
	}
	defer rows.Close()

	stats := YearStats{Year: year}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return YearStats{}, fmt.Errorf("baca statistik gagal: %w", err)
		}
		switch status {
		case StatusBaru:
			stats.Baru = count
		case StatusProses:
			stats.Proses = count
		case StatusSelesai:
			stats.Selesai = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return YearStats{}, fmt.Errorf("baca statistik gagal: %w", err)
	}
	return stats, nil
}

// AggregateByYear returns the monthly totals (all 12 months, zero-filled)
// and per-classification totals for one calendar year.
func (s *Store) AggregateByYear(ctx context.Context, year int) ([]MonthCount, []ClassificationCount, error) {
	start, end := yearBounds(year)

	monthRows, err := s.db.QueryContext(ctx,
		`SELECT EXTRACT(MONTH FROM created_at)::int, COUNT(*) FROM complaints
		 WHERE created_at >= $1 AND created_at < $2 GROUP BY 1`,
		start, end,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("agregasi bulanan gagal: %w", err)
	}
	defer monthRows.Close()

	byMonth := make(map[int]int, 12)
	for monthRows.Next() {
		var month, count int
		if err := monthRows.Scan(&month, &count); err != nil {
			return nil, nil, fmt.Errorf("baca agregasi bulanan gagal: %w", err)
		}
		byMonth[month] = count
	}
	if err := monthRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("baca agregasi bulanan gagal: %w", err)
	}

	monthly := make([]MonthCount, 12)
	for i := range monthly {
		monthly[i] = MonthCount{Month: i + 1, Count: byMonth[i+1]}
	}

	classRows, err := s.db.QueryContext(ctx,
		`SELECT classification, COUNT(*) FROM complaints
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY classification ORDER BY classification`,
		start, end,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("agregasi klasifikasi gagal: %w", err)
	}
	defer classRows.Close()

	classification := make([]ClassificationCount, 0, len(ClassificationOrder))
	for classRows.Next() {
		var entry ClassificationCount
		if err := classRows.Scan(&entry.Key, &entry.Count); err != nil {
			return nil, nil, fmt.Errorf("baca agregasi klasifikasi gagal: %w", err)
		}
		entry.Label = HumanizeClassification(entry.Key)
		classification = append(classification, entry)
	}
	if err := classRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("baca agregasi klasifikasi gagal: %w", err)
	}

	return monthly, classification, nil
}

// AnnualMatrix returns, per month, the complaint count for each
// classification (in ClassificationOrder) plus the PROSES/SELESAI totals.
// Shaped for the annual report sheet.
func (s *Store) AnnualMatrix(ctx context.Context, year int) ([][]int, []MonthStatus, error) {
	start, end := yearBounds(year)

	rows, err := s.db.QueryContext(ctx,
		`SELECT EXTRACT(MONTH FROM created_at)::int, classification, status, COUNT(*)
		 FROM complaints WHERE created_at >= $1 AND created_at < $2
		 GROUP BY 1, 2, 3`,
		start, end,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("matriks tahunan gagal: %w", err)
	}
	defer rows.Close()

	classIndex := make(map[string]int, len(ClassificationOrder))
	for i, key := range ClassificationOrder {
		classIndex[key] = i
	}

	matrix := make([][]int, 12)
	for i := range matrix {
		matrix[i] = make([]int, len(ClassificationOrder))
	}
	statuses := make([]MonthStatus, 12)

	for rows.Next() {
		var month, count int
		var classification, status string
		if err := rows.Scan(&month, &classification, &status, &count); err != nil {
			return nil, nil, fmt.Errorf("baca matriks tahunan gagal: %w", err)
		}
		if month < 1 || month > 12 {
			continue
		}
		if idx, ok := classIndex[classification]; ok {
			matrix[month-1][idx] += count
		}
		switch status {
		case StatusProses:
			statuses[month-1].Proses += count
		case StatusSelesai:
			statuses[month-1].Selesai += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("baca matriks tahunan gagal: %w", err)
	}
	return matrix, statuses, nil
}

// MonthStatus carries the in-progress/done totals for one month.
type MonthStatus struct {
	Proses  int
	Selesai int
}

// Years lists the distinct years that have complaints, newest first.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT EXTRACT(YEAR FROM created_at)::int FROM complaints ORDER BY 1 DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("daftar tahun gagal: %w", err)
	}
	defer rows.Close()

	years := make([]int, 0, 8)
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("baca daftar tahun gagal: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("baca daftar tahun gagal: %w", err)
	}
	return years, nil
}
