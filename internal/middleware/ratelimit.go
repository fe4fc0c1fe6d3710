package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// pruneThreshold bounds the window map; stale entries are swept once the map
// grows past it instead of on a timer.
const pruneThreshold = 1024

type window struct {
	start time.Time
	hits  int
}

// RateLimiter applies a fixed window per client IP. Register, login and token
// refresh are the only unauthenticated write endpoints, so the limiter only
// ever sees auth traffic and the map stays small.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

// allow counts one hit for ip at the given instant. A hit that opens a new
// window always passes; the window resets once period has elapsed.
func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.start) >= rl.period {
		if len(rl.windows) >= pruneThreshold {
			rl.prune(now)
		}
		rl.windows[ip] = &window{start: now, hits: 1}
		return true
	}

	w.hits++
	return w.hits <= rl.limit
}

// prune drops expired windows. Caller holds the lock.
func (rl *RateLimiter) prune(now time.Time) {
	for ip, w := range rl.windows {
		if now.Sub(w.start) >= rl.period {
			delete(rl.windows, ip)
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip, time.Now()) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys the window on the address the RealIP middleware resolved,
// ignoring the ephemeral port so reconnects share a window.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
