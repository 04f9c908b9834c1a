package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fdg312/nutridesk/internal/config"
	"golang.org/x/time/rate"
)

const limiterCleanupEvery = 1000

// clientLimiters holds one token bucket per client IP.
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	seen     atomic.Int64
}

func newClientLimiters(rps, burst int) *clientLimiters {
	return &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (c *clientLimiters) get(ip string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[ip]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.limiters[ip] = l
	}

	if c.seen.Add(1)%limiterCleanupEvery == 0 {
		c.evictIdle()
	}
	return l
}

// evictIdle drops buckets that are full again. Caller holds mu.
func (c *clientLimiters) evictIdle() {
	for ip, l := range c.limiters {
		if l.Tokens() >= float64(c.burst) {
			delete(c.limiters, ip)
		}
	}
}

// RateLimitMiddleware enforces a per-IP token bucket. It is a pass-through
// when RateLimitRPS <= 0. Health checks are never limited.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	if cfg.RateLimitRPS <= 0 {
		return next
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = cfg.RateLimitRPS
	}
	limiters := newClientLimiters(cfg.RateLimitRPS, burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || limiters.get(clientIP(r)).Allow() {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":    "rate_limited",
				"message": "Too many requests",
			},
		})
	})
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
