package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP. Idle buckets expire.
type RateLimiter struct {
	buckets *cache.Cache
	rate    rate.Limit
	burst   int
}

// NewRateLimiter allows r requests/sec with the given burst per IP.
func NewRateLimiter(r float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets: cache.New(10*time.Minute, 5*time.Minute),
		rate:    rate.Limit(r),
		burst:   burst,
	}
}

// Allow reports whether a request from ip is within the limit.
func (rl *RateLimiter) Allow(ip string) bool {
	if v, ok := rl.buckets.Get(ip); ok {
		rl.buckets.SetDefault(ip, v)
		return v.(*rate.Limiter).Allow()
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	if err := rl.buckets.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		if v, ok := rl.buckets.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		}
	}
	return limiter.Allow()
}

// RateLimit returns an HTTP middleware that rejects requests exceeding the
// configured rate with 429 Too Many Requests.
func RateLimit(r float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(r, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow(clientIP(req)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from X-Real-Ip/X-Forwarded-For.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
