package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pengaduan-service/internal/store"
)

type fakeAdmins struct {
	admin store.AdminUser
	err   error
}

func (f fakeAdmins) FindAdminByUsername(_ context.Context, username string) (store.AdminUser, error) {
	if f.err != nil {
		return store.AdminUser{}, f.err
	}
	if username != f.admin.Username {
		return store.AdminUser{}, store.ErrNotFound
	}
	return f.admin, nil
}

func newTestAuthenticator(t *testing.T, password string) *Authenticator {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password gagal: %v", err)
	}
	admins := fakeAdmins{admin: store.AdminUser{
		ID:           "adm-1",
		Username:     "admin",
		PasswordHash: hash,
		Role:         "ADMIN",
	}}
	return NewAuthenticator(admins, NewTokenManager("rahasia-tes", time.Hour), zerolog.Nop())
}

func TestLoginSuccess(t *testing.T) {
	a := newTestAuthenticator(t, "kata-sandi-kuat")

	token, err := a.Login(context.Background(), "  ADMIN ", "kata-sandi-kuat")
	if err != nil {
		t.Fatalf("login seharusnya berhasil: %v", err)
	}

	claims, err := a.tokens.Parse(token)
	if err != nil {
		t.Fatalf("token hasil login tidak valid: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != "ADMIN" {
		t.Fatalf("klaim salah: %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	a := newTestAuthenticator(t, "kata-sandi-kuat")

	if _, err := a.Login(context.Background(), "admin", "salah"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("mau ErrInvalidCredentials, dapat %v", err)
	}
}

func TestLoginUnknownUserSameError(t *testing.T) {
	a := newTestAuthenticator(t, "kata-sandi-kuat")

	if _, err := a.Login(context.Background(), "tidakada", "apapun"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("mau ErrInvalidCredentials, dapat %v", err)
	}
}

func TestLoginEmptyInput(t *testing.T) {
	a := newTestAuthenticator(t, "kata-sandi-kuat")

	if _, err := a.Login(context.Background(), "", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("mau ErrInvalidCredentials, dapat %v", err)
	}
	if _, err := a.Login(context.Background(), "admin", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("mau ErrInvalidCredentials, dapat %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	a := newTestAuthenticator(t, "kata-sandi-kuat")

	for i := 0; i < 5; i++ {
		_, _ = a.Login(context.Background(), "admin", "salah")
	}
	if _, err := a.Login(context.Background(), "admin", "kata-sandi-kuat"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("mau ErrTooManyAttempts, dapat %v", err)
	}
}
