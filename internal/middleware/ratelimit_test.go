package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*AttemptRateLimiter, *time.Time) {
	t.Helper()
	rl := NewAttemptRateLimiter(max, window)
	t.Cleanup(rl.Close)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAttemptRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)
	ip := "192.168.1.1"

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(ip), "attempt %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow(ip), "4th attempt should be blocked")
	assert.True(t, rl.Allow("192.168.1.2"), "different client should be allowed")
}

func TestAttemptRateLimiter_WindowSlides(t *testing.T) {
	rl, now := newTestLimiter(t, 2, time.Minute)
	ip := "192.168.1.1"

	assert.True(t, rl.Allow(ip))
	*now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow(ip))
	assert.False(t, rl.Allow(ip))

	assert.Equal(t, 30*time.Second, rl.RetryAfter(ip))

	*now = now.Add(31 * time.Second)
	assert.Equal(t, time.Duration(0), rl.RetryAfter(ip))
	assert.True(t, rl.Allow(ip))
}

func TestAttemptRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(t, 1, time.Minute)

	rl.Allow("192.168.1.1")
	*now = now.Add(2 * time.Minute)
	rl.cleanup()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	assert.Empty(t, rl.attempts)
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/checkout/coupon", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, serve("POST").Code)
	assert.Equal(t, http.StatusOK, serve("POST").Code)

	rr := serve("POST")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "Too many attempts")

	// only POSTs count
	assert.Equal(t, http.StatusOK, serve("DELETE").Code)
}
