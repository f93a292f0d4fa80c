package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// AttemptRateLimiter caps how many attempts one client may make within a sliding window.
// It guards coupon entry against code guessing.
type AttemptRateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewAttemptRateLimiter creates a new rate limiter and starts its cleanup loop
func NewAttemptRateLimiter(maxAttempts int, window time.Duration) *AttemptRateLimiter {
	rl := &AttemptRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	go rl.cleanupLoop(time.Minute)

	return rl
}

// Allow records an attempt from key and reports whether it fits the limit.
// Rejected attempts are not recorded.
func (rl *AttemptRateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := rl.prune(rl.attempts[key], now)
	if len(valid) >= rl.maxAttempts {
		rl.attempts[key] = valid
		return false
	}

	rl.attempts[key] = append(valid, now)
	return true
}

// RetryAfter returns how long key must wait before its next attempt is allowed
func (rl *AttemptRateLimiter) RetryAfter(key string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := rl.prune(rl.attempts[key], now)
	if len(valid) < rl.maxAttempts {
		return 0
	}

	// The oldest attempt in the window frees the next slot
	return valid[0].Add(rl.window).Sub(now)
}

// Close stops the cleanup loop
func (rl *AttemptRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *AttemptRateLimiter) prune(attempts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	var valid []time.Time
	for _, attempt := range attempts {
		if attempt.After(cutoff) {
			valid = append(valid, attempt)
		}
	}
	return valid
}

func (rl *AttemptRateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, attempts := range rl.attempts {
		valid := rl.prune(attempts, now)
		if len(valid) == 0 {
			delete(rl.attempts, key)
		} else {
			rl.attempts[key] = valid
		}
	}
}

func (rl *AttemptRateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// RateLimit rejects POST requests from clients that exceeded the limiter with a JSON 429
func RateLimit(rateLimiter *AttemptRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !rateLimiter.Allow(ip) {
				wait := rateLimiter.RetryAfter(ip)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeJSONError(w, http.StatusTooManyRequests,
					fmt.Sprintf("Too many attempts. Please try again in %s.", wait.Round(time.Second)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
