package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// generationLimiter throttles reminder generation per key, either an
// installation id or a client IP.
type generationLimiter struct {
	mu      sync.Mutex
	perMin  int
	entries map[string]*limiterEntry
}

func newGenerationLimiter(perMinute int) *generationLimiter {
	return &generationLimiter{
		perMin:  perMinute,
		entries: make(map[string]*limiterEntry),
	}
}

func (limiter *generationLimiter) allow(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.pruneLocked(now)
	entry, ok := limiter.entries[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(limiter.perMin)), limiter.perMin),
		}
		limiter.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (limiter *generationLimiter) pruneLocked(now time.Time) {
	for key, entry := range limiter.entries {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(limiter.entries, key)
		}
	}
}
