package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Complaint status values.
const (
	StatusBaru    = "BARU"
	StatusProses  = "PROSES"
	StatusSelesai = "SELESAI"
)

// ErrNotFound is returned when no complaint matches the given code.
var ErrNotFound = errors.New("pengaduan tidak ditemukan")

// Complaint is one submitted complaint. RTL ("rencana tindak lanjut") is the
// follow-up plan staff attach during triage.
type Complaint struct {
	ID             string
	Code           string
	ReporterName   string
	Email          string
	Phone          string
	Classification string
	Description    string
	Status         string
	RTL            string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ComplaintUpdate is one triage annotation attached to a complaint.
type ComplaintUpdate struct {
	Status    string
	Note      string
	CreatedAt time.Time
}

// NewComplaint carries the validated submission fields.
type NewComplaint struct {
	ReporterName   string
	Email          string
	Phone          string
	Classification string
	Description    string
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode builds a tracking code: PGD + yymmdd + 3 random alphanumerics.
func GenerateCode(now time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Clock fallback keeps submissions flowing if the entropy source
		// ever fails; uniqueness is still enforced by the insert.
		nano := now.UnixNano()
		buf[0] = byte(nano)
		buf[1] = byte(nano >> 8)
		buf[2] = byte(nano >> 16)
	}
	suffix := []byte{
		codeAlphabet[int(buf[0])%len(codeAlphabet)],
		codeAlphabet[int(buf[1])%len(codeAlphabet)],
		codeAlphabet[int(buf[2])%len(codeAlphabet)],
	}
	return fmt.Sprintf("PGD%s%s", now.UTC().Format("060102"), suffix)
}

// CreateComplaint inserts a complaint under a fresh unique code. On a code
// collision it retries with a new code, up to 6 attempts.
func (s *Store) CreateComplaint(ctx context.Context, input NewComplaint) (Complaint, error) {
	const query = `INSERT INTO complaints
		(id, code, reporter_name, email, phone, classification, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	for attempt := 0; attempt < 6; attempt++ {
		complaint := Complaint{
			ID:             uuid.NewString(),
			Code:           GenerateCode(time.Now()),
			ReporterName:   input.ReporterName,
			Email:          input.Email,
			Phone:          input.Phone,
			Classification: input.Classification,
			Description:    input.Description,
			Status:         StatusBaru,
		}

		err := s.db.QueryRowContext(ctx, query,
			complaint.ID, complaint.Code, complaint.ReporterName, complaint.Email,
			complaint.Phone, complaint.Classification, complaint.Description, complaint.Status,
		).Scan(&complaint.CreatedAt, &complaint.UpdatedAt)
		if err == nil {
			return complaint, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return Complaint{}, fmt.Errorf("simpan pengaduan gagal: %w", err)
	}
	return Complaint{}, errors.New("gagal membuat kode pengaduan unik")
}

// FindByCode returns a complaint and its most recent update, if any.
func (s *Store) FindByCode(ctx context.Context, code string) (Complaint, *ComplaintUpdate, error) {
	const query = `SELECT id, code, reporter_name, email, phone, classification,
		description, status, COALESCE(rtl, ''), completed_at, created_at, updated_at
		FROM complaints WHERE code = $1`

	var c Complaint
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.ReporterName, &c.Email, &c.Phone, &c.Classification,
		&c.Description, &c.Status, &c.RTL, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Complaint{}, nil, ErrNotFound
	}
	if err != nil {
		return Complaint{}, nil, fmt.Errorf("cari pengaduan gagal: %w", err)
	}

	const updateQuery = `SELECT status, COALESCE(note, ''), created_at
		FROM complaint_updates WHERE complaint_id = $1
		ORDER BY created_at DESC LIMIT 1`

	var latest ComplaintUpdate
	err = s.db.QueryRowContext(ctx, updateQuery, c.ID).Scan(&latest.Status, &latest.Note, &latest.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil, nil
	}
	if err != nil {
		return Complaint{}, nil, fmt.Errorf("cari riwayat pengaduan gagal: %w", err)
	}
	return c, &latest, nil
}

// List returns one page of complaints, newest first, plus the total count.
func (s *Store) List(ctx context.Context, page, limit int) ([]Complaint, int, error) {
	if limit < 1 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("hitung pengaduan gagal: %w", err)
	}

	const query = `SELECT id, code, reporter_name, email, phone, classification,
		description, status, COALESCE(rtl, ''), completed_at, created_at, updated_at
		FROM complaints ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("daftar pengaduan gagal: %w", err)
	}
	defer rows.Close()

	complaints, err := scanComplaints(rows)
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

// ListByMonth returns all complaints created inside one UTC month, oldest
// first. Used by the report exporters.
func (s *Store) ListByMonth(ctx context.Context, year, month int) ([]Complaint, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	const query = `SELECT id, code, reporter_name, email, phone, classification,
		description, status, COALESCE(rtl, ''), completed_at, created_at, updated_at
		FROM complaints WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("daftar pengaduan bulanan gagal: %w", err)
	}
	defer rows.Close()

	return scanComplaints(rows)
}

func scanComplaints(rows *sql.Rows) ([]Complaint, error) {
	complaints := make([]Complaint, 0, 16)
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(
			&c.ID, &c.Code, &c.ReporterName, &c.Email, &c.Phone, &c.Classification,
			&c.Description, &c.Status, &c.RTL, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("baca baris pengaduan gagal: %w", err)
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("baca daftar pengaduan gagal: %w", err)
	}
	return complaints, nil
}

// ComplaintPatch describes an admin triage update; nil fields stay untouched.
type ComplaintPatch struct {
	Status      *string
	RTL         *string
	CompletedAt *time.Time
	Note        string
}

// UpdateComplaint applies a triage patch and appends a complaint_updates row.
func (s *Store) UpdateComplaint(ctx context.Context, code string, patch ComplaintPatch) (Complaint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Complaint{}, fmt.Errorf("mulai transaksi gagal: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE complaints SET
			status = COALESCE($2, status),
			rtl = COALESCE($3, rtl),
			completed_at = COALESCE($4, completed_at),
			updated_at = NOW()
		WHERE code = $1
		RETURNING id, code, reporter_name, email, phone, classification,
			description, status, COALESCE(rtl, ''), completed_at, created_at, updated_at`

	var c Complaint
	err = tx.QueryRowContext(ctx, query, code, patch.Status, patch.RTL, patch.CompletedAt).Scan(
		&c.ID, &c.Code, &c.ReporterName, &c.Email, &c.Phone, &c.Classification,
		&c.Description, &c.Status, &c.RTL, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Complaint{}, ErrNotFound
	}
	if err != nil {
		return Complaint{}, fmt.Errorf("perbarui pengaduan gagal: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO complaint_updates (id, complaint_id, status, note) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), c.ID, c.Status, patch.Note,
	)
	if err != nil {
		return Complaint{}, fmt.Errorf("catat riwayat pengaduan gagal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Complaint{}, fmt.Errorf("commit transaksi gagal: %w", err)
	}
	return c, nil
}

// RecordNotification stores one notification outcome. Detail is truncated so
// oversized provider responses cannot bloat the audit table.
func (s *Store) RecordNotification(ctx context.Context, complaintID, channel, status, detail string) error {
	if len(detail) > 950 {
		detail = detail[:950]
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, complaint_id, channel, status, detail) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), complaintID, channel, status, detail,
	)
	if err != nil {
		return fmt.Errorf("simpan notifikasi gagal: %w", err)
	}
	return nil
}
