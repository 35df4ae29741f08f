package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Keys that haven't been seen within this window are dropped once the
	// number of tracked keys exceeds maxTrackedKeys.
	idleKeyTimeout = 10 * time.Minute
	maxTrackedKeys = 100_000
)

// Limiter limits operations based on a provided key, such as a client IP.
type Limiter interface {
	Allow(key string) (bool, error)
}

// LimiterCtor allows the creation of a Limiter using a provided rate.
type LimiterCtor func(rate float64) Limiter

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localRateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	now      func() time.Time
}

// NewLocalRateLimiter returns an in memory limiter allowing limit operations
// per second per key, with a burst of the same size.
func NewLocalRateLimiter(limit rate.Limit) Limiter {
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	return NewLocalRateLimiterWithBurst(limit, burst)
}

// NewLocalRateLimiterWithBurst returns an in memory limiter with an explicit
// burst size.
func NewLocalRateLimiterWithBurst(limit rate.Limit, burst int) Limiter {
	return &localRateLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*keyedLimiter),
		now:      time.Now,
	}
}

// Allow implements limiter.Allow.
func (l *localRateLimiter) Allow(key string) (bool, error) {
	l.mu.Lock()
	now := l.now()

	entry, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedKeys {
			l.evictIdle(now)
		}

		entry = &keyedLimiter{
			limiter: rate.NewLimiter(l.limit, l.burst),
		}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1), nil
}

func (l *localRateLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > idleKeyTimeout {
			delete(l.limiters, key)
		}
	}
}

// NoLimiter never limits operations
type NoLimiter struct {
}

// Allow implements limiter.Allow.
func (n *NoLimiter) Allow(key string) (bool, error) {
	return true, nil
}
