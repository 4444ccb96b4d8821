// Package auth handles admin credential checks and session tokens.
package auth

import (
	"sync"
	"time"
)

type attemptRecord struct {
	count int
	first time.Time
}

// LoginLimiter is a small fixed-window counter keyed by login identifier.
// It only guards the dashboard login form, so it stays separate from the
// submission guard and resets on restart.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string]*attemptRecord),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow counts one attempt for the identifier and reports whether it is
// still inside the limit.
func (l *LoginLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, exists := l.attempts[identifier]
	if !exists || now.Sub(rec.first) > l.window {
		l.attempts[identifier] = &attemptRecord{count: 1, first: now}
		l.prune(now)
		return true
	}
	rec.count++
	return rec.count <= l.max
}

// prune drops expired records; caller holds l.mu.
func (l *LoginLimiter) prune(now time.Time) {
	for key, rec := range l.attempts {
		if now.Sub(rec.first) > l.window {
			delete(l.attempts, key)
		}
	}
}
