package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter bounds master-password verification attempts per user to
// slow brute forcing. Each user gets an independent token bucket; buckets
// that refill completely are dropped during periodic cleanup so the map does
// not grow without bound.
type AttemptLimiter struct {
	limiters sync.Map // map[int64]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

// NewAttemptLimiter allows attempts per window with the full window available
// as a burst. A typical profile is 5 attempts per minute.
func NewAttemptLimiter(attempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		rate:        rate.Limit(float64(attempts) / window.Seconds()),
		burst:       attempts,
		lastCleanup: time.Now(),
	}
}

// Allow reports whether the user may make another attempt right now.
func (l *AttemptLimiter) Allow(userID int64) bool {
	limiter := l.get(userID)
	l.maybeCleanup()
	return limiter.Allow()
}

func (l *AttemptLimiter) get(userID int64) *rate.Limiter {
	if v, ok := l.limiters.Load(userID); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	actual, _ := l.limiters.LoadOrStore(userID, limiter)
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle buckets at most once every five minutes. A bucket
// holding its full burst has not been touched for at least a window.
func (l *AttemptLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()

	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}
