// Package store persists complaints, status updates, notification outcomes,
// and admin accounts in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// Store wraps the relational database. All methods are safe for concurrent
// use; *sql.DB pools connections internally.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("buka koneksi database gagal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database gagal: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunMigrations applies the idempotent schema.
func (s *Store) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS complaints (
			id UUID PRIMARY KEY,
			code VARCHAR(20) UNIQUE NOT NULL,
			reporter_name VARCHAR(150) NOT NULL,
			email VARCHAR(190) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			classification VARCHAR(40) NOT NULL,
			description TEXT NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'BARU',
			rtl TEXT,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE TABLE IF NOT EXISTS complaint_updates (
			id UUID PRIMARY KEY,
			complaint_id UUID NOT NULL REFERENCES complaints(id) ON DELETE CASCADE,
			status VARCHAR(10) NOT NULL,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			complaint_id UUID NOT NULL REFERENCES complaints(id) ON DELETE CASCADE,
			channel VARCHAR(20) NOT NULL,
			status VARCHAR(10) NOT NULL,
			detail VARCHAR(1000),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE TABLE IF NOT EXISTS admin_users (
			id UUID PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'admin',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);`,
		`CREATE INDEX IF NOT EXISTS idx_complaint_updates_complaint_id ON complaint_updates(complaint_id);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_complaint_id ON notifications(complaint_id);`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migrasi gagal: %w", err)
		}
	}
	return nil
}
