package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyFunc extracts the rate-limiting key from a request.
type KeyFunc func(r *http.Request) string

// CallerKey keys on the caller identity header, falling back to the remote
// address for anonymous requests.
func CallerKey(header string) KeyFunc {
	return func(r *http.Request) string {
		if id := r.Header.Get(header); id != "" {
			return id
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}

// RateLimiter enforces a per-caller request budget over a sliding window
// using token buckets. Idle callers are pruned after two windows.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*callerLimiter

	limit rate.Limit
	burst int
	ttl   time.Duration
	key   KeyFunc
	now   func() time.Time
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows up to requests per window for each key.
func NewRateLimiter(requests int, window time.Duration, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*callerLimiter),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		ttl:      2 * window,
		key:      key,
		now:      time.Now,
	}
}

// allow reports whether the caller identified by key has budget left.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now

	rl.prune(now)

	return cl.limiter.Allow()
}

// prune drops limiters not seen for ttl. Caller must hold mu.
func (rl *RateLimiter) prune(now time.Time) {
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > rl.ttl {
			delete(rl.limiters, key)
		}
	}
}

// Limit wraps a handler with the rate-limit check. Exhausted callers get a
// 429 with a retry hint.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(rl.key(r)) {
			WriteError(w, http.StatusTooManyRequests,
				"rate_limited",
				"too many requests, slow down",
				nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
