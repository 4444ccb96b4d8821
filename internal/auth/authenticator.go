package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"pengaduan-service/internal/store"
)

var (
	ErrTooManyAttempts    = errors.New("terlalu banyak percobaan login")
	ErrInvalidCredentials = errors.New("kredensial tidak valid")
)

// AdminFinder is the store lookup the authenticator depends on.
type AdminFinder interface {
	FindAdminByUsername(ctx context.Context, username string) (store.AdminUser, error)
}

// dummyHash normalizes bcrypt timing when the username is unknown, so a
// missing account is not distinguishable from a wrong password.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("dummy_password_value"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

// Authenticator validates admin credentials and issues session tokens.
type Authenticator struct {
	admins  AdminFinder
	limiter *LoginLimiter
	tokens  *TokenManager
	log     zerolog.Logger
}

func NewAuthenticator(admins AdminFinder, tokens *TokenManager, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		admins:  admins,
		limiter: NewLoginLimiter(5, 5*time.Minute),
		tokens:  tokens,
		log:     log.With().Str("component", "auth").Logger(),
	}
}

// Login checks the attempt limit and the password, returning a signed
// session token on success.
func (a *Authenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	if !a.limiter.Allow(identifier) {
		a.log.Warn().Str("identifier", identifier).Msg("login dibatasi")
		return "", ErrTooManyAttempts
	}

	admin, err := a.admins.FindAdminByUsername(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(admin.Username, admin.Role)
	if err != nil {
		return "", err
	}
	a.log.Info().Str("identifier", identifier).Msg("admin login berhasil")
	return token, nil
}

// HashPassword wraps bcrypt for callers that seed accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
