package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pengaduan-service/internal/antispam"
	"pengaduan-service/internal/api"
	"pengaduan-service/internal/auth"
	"pengaduan-service/internal/config"
	"pengaduan-service/internal/notify"
	"pengaduan-service/internal/report"
	"pengaduan-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("konfigurasi tidak valid")
	}

	log := newLogger(cfg)
	ctx := context.Background()

	dataStore, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("koneksi database gagal")
	}
	defer dataStore.Close()

	if err := dataStore.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrasi database gagal")
	}

	if err := seedAdmin(ctx, cfg, dataStore, log); err != nil {
		log.Fatal().Err(err).Msg("seed admin gagal")
	}

	guard := buildGuard(ctx, cfg, log)

	fonnte := notify.NewClient(cfg.FonnteToken, cfg.CountryCode)
	dispatcher := notify.NewDispatcher(fonnte, dataStore, log)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	authenticator := auth.NewAuthenticator(dataStore, tokens, log)

	sheetsExporter := report.NewSheetsExporter(cfg.GoogleSAEmail, cfg.GoogleSAKey)
	if !sheetsExporter.Configured() {
		log.Warn().Msg("kredensial Google Sheets tidak diset, ekspor Sheets dinonaktifkan")
	}

	server := api.NewServer(cfg, dataStore, guard, dispatcher, authenticator, tokens, sheetsExporter, log)

	log.Info().Str("port", cfg.Port).Msg("layanan pengaduan berjalan")
	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("server berhenti")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogJSON {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// seedAdmin creates the bootstrap account on an empty install.
func seedAdmin(ctx context.Context, cfg config.Config, dataStore *store.Store, log zerolog.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_USERNAME/ADMIN_PASSWORD tidak diset, akun admin tidak dibuat")
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	created, err := dataStore.SeedAdmin(ctx, cfg.AdminUsername, hash)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("username", cfg.AdminUsername).Msg("akun admin awal dibuat")
	}
	return nil
}

// buildGuard prefers Redis so limits hold across instances, and falls
// back to per-process memory when Redis is absent or unreachable.
func buildGuard(ctx context.Context, cfg config.Config, log zerolog.Logger) antispam.Guard {
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR tidak diset, memakai pembatas dalam memori")
		return antispam.NewMemoryGuard()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis tidak terjangkau, memakai pembatas dalam memori")
		return antispam.NewMemoryGuard()
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("pembatas anti-spam memakai Redis")
	return antispam.NewRedisGuard(client, cfg.RedisKeyPrefix, log)
}
