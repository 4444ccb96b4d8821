// Package antispam guards the public complaint submission endpoint with
// sliding-window rate limits and duplicate-content detection.
package antispam

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Window durations and limits. Cleanup and the per-call filters share these
// constants so retention cutoffs cannot drift apart.
const (
	ShortWindow     = 10 * time.Minute
	DailyWindow     = 24 * time.Hour
	EmailWindow     = time.Hour
	DupWindow       = 30 * time.Minute
	ShortLimitPerIP = 5
	DailyLimitPerIP = 20
	LimitPerEmail   = 3

	cleanupInterval = time.Minute
)

// Rejection reason codes. Stable machine identifiers; the messages beside
// them are presentation only.
const (
	CodeRateLimitIPShort = "RATE_LIMIT_IP_SHORT"
	CodeRateLimitIPDaily = "RATE_LIMIT_IP_DAILY"
	CodeRateLimitEmail   = "RATE_LIMIT_EMAIL"
	CodeDuplicateContent = "DUPLICATE_CONTENT"
)

// Submission carries the identity and content the policy evaluates.
type Submission struct {
	IP          string
	Email       string
	Description string
}

// Decision is the outcome of a policy evaluation. Rejections are normal
// return values, not errors.
type Decision struct {
	Allowed bool
	Code    string
	Message string
}

// Guard evaluates a submission against the anti-abuse policy.
type Guard interface {
	Check(ctx context.Context, sub Submission) Decision
}

func accept() Decision {
	return Decision{Allowed: true}
}

func reject(code, message string) Decision {
	return Decision{Allowed: false, Code: code, Message: message}
}

var rejectionMessages = map[string]string{
	CodeRateLimitIPShort: "Terlalu banyak percobaan dari IP Anda dalam 10 menit. Coba lagi nanti.",
	CodeRateLimitIPDaily: "Batas harian pengiriman dari IP ini tercapai.",
	CodeRateLimitEmail:   "Batas pengiriman untuk email ini tercapai untuk 1 jam terakhir.",
	CodeDuplicateContent: "Konten pengaduan identik telah dikirim baru-baru ini.",
}

type recentSubmission struct {
	t     int64
	email string
	ip    string
	hash  string
}

// MemoryGuard is the in-process implementation: per-IP and per-email
// timestamp ledgers plus a recent-submission list for content dedup.
// Counters reset on process restart and are not shared across replicas;
// use RedisGuard when limits must hold globally.
type MemoryGuard struct {
	mu          sync.Mutex
	perIP       map[string][]int64
	perEmail    map[string][]int64
	recent      []recentSubmission
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		perIP:       make(map[string][]int64),
		perEmail:    make(map[string][]int64),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Check applies the ordered policy: IP short window, IP daily window, email
// hourly window, then duplicate content. The first failing check wins.
// Ledgers record only accepted submissions, so a rejected attempt never
// consumes quota.
func (g *MemoryGuard) Check(_ context.Context, sub Submission) Decision {
	ip := strings.TrimSpace(sub.IP)
	if ip == "" {
		ip = "unknown"
	}
	email := strings.ToLower(strings.TrimSpace(sub.Email))

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.maybeCleanup(now)
	nowMs := now.UnixMilli()

	// The per-IP ledger is pruned with the daily (superset) cutoff so the
	// short-window count can still be derived from the same list.
	shortCut := nowMs - ShortWindow.Milliseconds()
	dailyCut := nowMs - DailyWindow.Milliseconds()
	shortCount := 0
	ipKept := g.perIP[ip][:0]
	for _, ts := range g.perIP[ip] {
		if ts < dailyCut {
			continue
		}
		if ts >= shortCut {
			shortCount++
		}
		ipKept = append(ipKept, ts)
	}
	g.perIP[ip] = ipKept

	emailCut := nowMs - EmailWindow.Milliseconds()
	emailKept := g.perEmail[email][:0]
	for _, ts := range g.perEmail[email] {
		if ts >= emailCut {
			emailKept = append(emailKept, ts)
		}
	}
	g.perEmail[email] = emailKept

	if shortCount >= ShortLimitPerIP {
		return reject(CodeRateLimitIPShort, rejectionMessages[CodeRateLimitIPShort])
	}
	if len(ipKept) >= DailyLimitPerIP {
		return reject(CodeRateLimitIPDaily, rejectionMessages[CodeRateLimitIPDaily])
	}
	if len(emailKept) >= LimitPerEmail {
		return reject(CodeRateLimitEmail, rejectionMessages[CodeRateLimitEmail])
	}

	hash := Fingerprint(sub.Description)
	dupCut := nowMs - DupWindow.Milliseconds()
	for _, r := range g.recent {
		if r.t < dupCut || r.hash != hash {
			continue
		}
		if r.email == email || r.ip == ip {
			return reject(CodeDuplicateContent, rejectionMessages[CodeDuplicateContent])
		}
	}

	g.perIP[ip] = append(g.perIP[ip], nowMs)
	g.perEmail[email] = append(g.perEmail[email], nowMs)
	g.recent = append(g.recent, recentSubmission{t: nowMs, email: email, ip: ip, hash: hash})

	return accept()
}

// maybeCleanup amortizes pruning across all keys at most once per minute.
// Caller must hold g.mu.
func (g *MemoryGuard) maybeCleanup(now time.Time) {
	if now.Sub(g.lastCleanup) < cleanupInterval {
		return
	}
	nowMs := now.UnixMilli()

	dailyCut := nowMs - DailyWindow.Milliseconds()
	for key, list := range g.perIP {
		kept := list[:0]
		for _, ts := range list {
			if ts >= dailyCut {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(g.perIP, key)
			continue
		}
		g.perIP[key] = kept
	}

	emailCut := nowMs - EmailWindow.Milliseconds()
	for key, list := range g.perEmail {
		kept := list[:0]
		for _, ts := range list {
			if ts >= emailCut {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(g.perEmail, key)
			continue
		}
		g.perEmail[key] = kept
	}

	dupCut := nowMs - DupWindow.Milliseconds()
	recentKept := g.recent[:0]
	for _, r := range g.recent {
		if r.t >= dupCut {
			recentKept = append(recentKept, r)
		}
	}
	g.recent = recentKept

	g.lastCleanup = now
}
