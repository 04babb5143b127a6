package auth

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mytheresa/storefront/app/api"
)

// RateLimiter provides rate limiting for login attempts
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	now      func() time.Time

	maxAttempts int
	window      time.Duration
	blockTime   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type attemptInfo struct {
	count     int
	firstTry  time.Time
	blockedAt time.Time
}

// NewRateLimiter allows maxAttempts per client within window and then blocks
// the client for blockTime. Call Close to stop the cleanup goroutine.
func NewRateLimiter(maxAttempts int, window, blockTime time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts:    make(map[string]*attemptInfo),
		now:         time.Now,
		maxAttempts: maxAttempts,
		window:      window,
		blockTime:   blockTime,
		stop:        make(chan struct{}),
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

// DefaultRateLimiter allows 5 attempts per 15 minutes, then blocks for 15 minutes.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 15*time.Minute, 15*time.Minute)
}

// Allow counts an attempt for key and reports whether it may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.attempts[key]
	if !exists {
		rl.attempts[key] = &attemptInfo{count: 1, firstTry: now}
		return true
	}

	if !info.blockedAt.IsZero() {
		if now.Sub(info.blockedAt) < rl.blockTime {
			return false
		}
		// Block expired, reset
		*info = attemptInfo{count: 1, firstTry: now}
		return true
	}

	if now.Sub(info.firstTry) > rl.window {
		*info = attemptInfo{count: 1, firstTry: now}
		return true
	}

	info.count++
	if info.count > rl.maxAttempts {
		info.blockedAt = now
		return false
	}
	return true
}

// RecordSuccess forgets the attempts of key.
func (rl *RateLimiter) RecordSuccess(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

// BlockedUntil returns when the block on key lifts, or the zero time.
func (rl *RateLimiter) BlockedUntil(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, exists := rl.attempts[key]
	if !exists || info.blockedAt.IsZero() {
		return time.Time{}
	}
	until := info.blockedAt.Add(rl.blockTime)
	if rl.now().After(until) {
		return time.Time{}
	}
	return until
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, info := range rl.attempts {
		windowExpired := now.Sub(info.firstTry) > rl.window
		blockExpired := info.blockedAt.IsZero() || now.Sub(info.blockedAt) > rl.blockTime
		if windowExpired && blockExpired {
			delete(rl.attempts, key)
		}
	}
}

// Middleware answers 429 once a client has used up its attempts.
// A 200 response from the wrapped handler clears the client's count.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)

		if !rl.Allow(key) {
			retryAfter := int(rl.BlockedUntil(key).Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			api.WriteError(w, http.StatusTooManyRequests, "Too many login attempts")
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if ww.Status() == http.StatusOK {
			rl.RecordSuccess(key)
		}
	})
}

// clientIP keys on the connection address. Forwarded headers only count when
// the server runs chi's RealIP in front of this middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
