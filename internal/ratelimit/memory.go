package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps per-session counters in a process-local map. Loss on
// restart only relaxes limiting, never tightens it incorrectly, which is
// acceptable for a 60 second window.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*window

	limit int
	per   time.Duration
	now   func() time.Time
}

// NewMemoryLimiter allows at most limit submissions per session within per.
func NewMemoryLimiter(limit int, per time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*window),
		limit:   limit,
		per:     per,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, sessionID string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[sessionID]
	if !ok || now.After(entry.resetAt) {
		l.entries[sessionID] = &window{count: 1, resetAt: now.Add(l.per)}
		return Result{Allowed: true}, nil
	}

	if entry.count >= l.limit {
		retryAfter := int(math.Ceil(entry.resetAt.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return Result{Allowed: false, RetryAfterSeconds: retryAfter}, nil
	}

	entry.count++
	return Result{Allowed: true}, nil
}

var _ Limiter = (*MemoryLimiter)(nil)
