package http

import (
	"sync"
	"time"
)

// rateLimiter implements a simple per-IP rate limiter over a sliding
// one-minute window.
type rateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	lastClean time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     perMinute,
		window:    time.Minute,
		lastClean: time.Now(),
	}
}

// allow reports whether the given client may make a request now, and
// records the request if so.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Periodically drop clients that have gone quiet.
	if now.Sub(rl.lastClean) > 5*time.Minute {
		rl.cleanLocked(now)
		rl.lastClean = now
	}

	cutoff := now.Add(-rl.window)
	recent := rl.requests[clientIP][:0]
	for _, t := range rl.requests[clientIP] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.requests[clientIP] = recent
		return false
	}

	rl.requests[clientIP] = append(recent, now)
	return true
}

// cleanLocked removes stale entries. Caller must hold mu.
func (rl *rateLimiter) cleanLocked(now time.Time) {
	stale := now.Add(-10 * time.Minute)
	for ip, times := range rl.requests {
		if len(times) == 0 || times[len(times)-1].Before(stale) {
			delete(rl.requests, ip)
		}
	}
}
