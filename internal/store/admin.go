package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// AdminUser is a staff account for the triage dashboard.
type AdminUser struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
}

// FindAdminByUsername looks up one admin account. Returns ErrNotFound when
// the username is unknown; callers equalize timing themselves.
func (s *Store) FindAdminByUsername(ctx context.Context, username string) (AdminUser, error) {
	const query = `SELECT id, username, password_hash, role FROM admin_users WHERE username = $1`

	var admin AdminUser
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrNotFound
	}
	if err != nil {
		return AdminUser{}, fmt.Errorf("cari admin gagal: %w", err)
	}
	return admin, nil
}

// SeedAdmin creates the bootstrap account when the admin table is empty.
// Returns true when an account was created.
func (s *Store) SeedAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return false, fmt.Errorf("hitung admin gagal: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, username, password_hash, role) VALUES ($1, $2, $3, 'admin')`,
		uuid.NewString(), username, passwordHash,
	)
	if err != nil {
		return false, fmt.Errorf("buat admin awal gagal: %w", err)
	}
	return true, nil
}
