package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"agent-console/config"
	"agent-console/observability"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdle is how long an idle client's bucket is kept
const limiterIdle = 10 * time.Minute

// RateLimiter holds one token bucket per client address
type RateLimiter struct {
	enabled  bool
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

// NewRateLimiter creates a limiter from config; a disabled limiter allows everything
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		enabled:  cfg.Enabled,
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		limiters: cache.New(limiterIdle, 2*limiterIdle),
	}
}

// Allow reports whether the client may submit now
func (l *RateLimiter) Allow(key string) bool {
	if !l.enabled {
		return true
	}
	return l.limiterFor(key).Allow()
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	if v, found := l.limiters.Get(key); found {
		limiter := v.(*rate.Limiter)
		l.limiters.Set(key, limiter, cache.DefaultExpiration)
		return limiter
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	if err := l.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// Lost the race with another request for the same client
		if v, found := l.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// RetryAfter is the number of seconds until one token is available again
func (l *RateLimiter) RetryAfter() int {
	if l.limit <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/float64(l.limit))))
}

// Middleware rejects requests over the client's rate with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			retry := l.RetryAfter()
			observability.GetMetrics().RecordRateLimited(r.URL.Path)
			observability.WithContext(r.Context()).Warn("submission rate limited", "client", clientKey(r))

			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please wait ` + strconv.Itoa(retry) + ` seconds before trying again."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the client; RealIP has already replaced RemoteAddr
// when a proxy header was present.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
