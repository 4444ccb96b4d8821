package antispam

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisGuard enforces the same policy globally across replicas using
// sorted-set ledgers and TTL'd duplicate keys. When Redis is unavailable
// it falls back to an in-memory guard so submissions keep a baseline of
// protection instead of failing open.
type RedisGuard struct {
	client    *redis.Client
	keyPrefix string
	fallback  *MemoryGuard
	timeout   time.Duration
	log       zerolog.Logger
}

func NewRedisGuard(client *redis.Client, keyPrefix string, log zerolog.Logger) *RedisGuard {
	return &RedisGuard{
		client:    client,
		keyPrefix: keyPrefix,
		fallback:  NewMemoryGuard(),
		timeout:   800 * time.Millisecond,
		log:       log.With().Str("component", "antispam.redis").Logger(),
	}
}

func (g *RedisGuard) Check(ctx context.Context, sub Submission) Decision {
	if g == nil || g.client == nil {
		return g.fallback.Check(ctx, sub)
	}

	ip := strings.TrimSpace(sub.IP)
	if ip == "" {
		ip = "unknown"
	}
	email := strings.ToLower(strings.TrimSpace(sub.Email))
	hash := Fingerprint(sub.Description)

	opCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	nowMs := time.Now().UnixMilli()
	ipKey := fmt.Sprintf("%s:rl:ip:%s", g.keyPrefix, ip)
	emailKey := fmt.Sprintf("%s:rl:email:%s", g.keyPrefix, email)
	dupIPKey := fmt.Sprintf("%s:dup:%s:ip:%s", g.keyPrefix, hash, ip)
	dupEmailKey := fmt.Sprintf("%s:dup:%s:email:%s", g.keyPrefix, hash, email)

	dailyCut := strconv.FormatInt(nowMs-DailyWindow.Milliseconds(), 10)
	shortCut := strconv.FormatInt(nowMs-ShortWindow.Milliseconds(), 10)
	emailCut := strconv.FormatInt(nowMs-EmailWindow.Milliseconds(), 10)

	pipe := g.client.TxPipeline()
	pipe.ZRemRangeByScore(opCtx, ipKey, "-inf", "("+dailyCut)
	dailyCmd := pipe.ZCard(opCtx, ipKey)
	shortCmd := pipe.ZCount(opCtx, ipKey, shortCut, "+inf")
	pipe.ZRemRangeByScore(opCtx, emailKey, "-inf", "("+emailCut)
	emailCmd := pipe.ZCard(opCtx, emailKey)
	dupIPCmd := pipe.Exists(opCtx, dupIPKey)
	dupEmailCmd := pipe.Exists(opCtx, dupEmailKey)
	if _, err := pipe.Exec(opCtx); err != nil {
		g.log.Warn().Err(err).Msg("redis tidak tersedia, pakai fallback memori")
		return g.fallback.Check(ctx, sub)
	}

	if shortCmd.Val() >= ShortLimitPerIP {
		return reject(CodeRateLimitIPShort, rejectionMessages[CodeRateLimitIPShort])
	}
	if dailyCmd.Val() >= DailyLimitPerIP {
		return reject(CodeRateLimitIPDaily, rejectionMessages[CodeRateLimitIPDaily])
	}
	if emailCmd.Val() >= LimitPerEmail {
		return reject(CodeRateLimitEmail, rejectionMessages[CodeRateLimitEmail])
	}
	if dupIPCmd.Val() > 0 || dupEmailCmd.Val() > 0 {
		return reject(CodeDuplicateContent, rejectionMessages[CodeDuplicateContent])
	}

	// Accepted: record after all checks pass, same rule as the memory guard.
	member := uuid.NewString()
	record := g.client.TxPipeline()
	record.ZAdd(opCtx, ipKey, redis.Z{Score: float64(nowMs), Member: member})
	record.Expire(opCtx, ipKey, DailyWindow)
	record.ZAdd(opCtx, emailKey, redis.Z{Score: float64(nowMs), Member: member})
	record.Expire(opCtx, emailKey, EmailWindow)
	record.SetNX(opCtx, dupIPKey, "1", DupWindow)
	record.SetNX(opCtx, dupEmailKey, "1", DupWindow)
	if _, err := record.Exec(opCtx); err != nil {
		// The decision already passed; losing one record is acceptable.
		g.log.Warn().Err(err).Msg("gagal mencatat kuota di redis")
	}

	return accept()
}
