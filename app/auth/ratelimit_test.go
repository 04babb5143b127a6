package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, maxAttempts int) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(maxAttempts, 15*time.Minute, 15*time.Minute)
	t.Cleanup(rl.Close)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterAllow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients are unaffected")
	assert.Equal(t, now.Add(15*time.Minute), rl.BlockedUntil("10.0.0.1"))

	*now = now.Add(16 * time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"), "block lifts")
	assert.True(t, rl.BlockedUntil("10.0.0.1").IsZero())
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl, now := newTestLimiter(t, 2)

	assert.True(t, rl.Allow("ip"))
	assert.True(t, rl.Allow("ip"))

	*now = now.Add(16 * time.Minute)
	assert.True(t, rl.Allow("ip"))
	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))
}

func TestRateLimiterPrune(t *testing.T) {
	rl, now := newTestLimiter(t, 2)
	rl.Allow("old")
	*now = now.Add(20 * time.Minute)
	rl.Allow("fresh")

	rl.prune()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.attempts, "old")
	assert.Contains(t, rl.attempts, "fresh")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2)

	status := http.StatusUnauthorized
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do().Code)

	// A successful login clears the count
	status = http.StatusOK
	assert.Equal(t, http.StatusOK, do().Code)

	status = http.StatusUnauthorized
	assert.Equal(t, http.StatusUnauthorized, do().Code)
	assert.Equal(t, http.StatusUnauthorized, do().Code)

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many login attempts"}`, rec.Body.String())
}
