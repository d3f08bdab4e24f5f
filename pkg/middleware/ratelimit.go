package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// client holds the token bucket for one remote address.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters tracks a limiter per client IP and evicts entries not seen
// within the TTL.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     int
	burst   int
	ttl     time.Duration
	now     func() time.Time // injectable clock for tests
}

func newClientLimiters(rps, burst int, ttl time.Duration) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*client),
		rps:     rps,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the limiter for ip, creating one on first sight, and refreshes
// its lastSeen.
func (cl *clientLimiters) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	c, ok := cl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(cl.rps), cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = cl.now()
	return c.limiter
}

// evictStale drops every client whose lastSeen is older than the TTL.
func (cl *clientLimiters) evictStale() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cutoff := cl.now().Add(-cl.ttl)
	for ip, c := range cl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(cl.clients, ip)
		}
	}
}

func (cl *clientLimiters) len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

func (cl *clientLimiters) evictLoop() {
	ticker := time.NewTicker(cl.ttl)
	defer ticker.Stop()
	for range ticker.C {
		cl.evictStale()
	}
}

// RateLimit returns middleware enforcing a per-IP token bucket of rps
// requests per second with the given burst. Exceeding the limit yields
// HTTP 429.
func RateLimit(rps, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	const evictTTL = 3 * time.Minute
	limiters := newClientLimiters(rps, burst, evictTTL)
	go limiters.evictLoop()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiters.get(ip).Allow() {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "RATE_LIMITED",
					"message": "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the client address from X-Forwarded-For, X-Real-IP, or
// RemoteAddr, in that order.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
