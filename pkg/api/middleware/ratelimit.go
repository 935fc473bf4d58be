package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/pkg/api/handlers"
)

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int

	// EntryTTL is how long an idle client's bucket is kept. Default: 15m.
	EntryTTL time.Duration

	// CleanupInterval is how often idle buckets are swept. Default: 5m.
	CleanupInterval time.Duration
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu              sync.Mutex
	limit           rate.Limit
	burst           int
	entries         map[string]*rateLimitEntry
	entryTTL        time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	ttl := cfg.EntryTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}
	return &rateLimiter{
		limit:           rate.Limit(cfg.RequestsPerSecond),
		burst:           cfg.Burst,
		entries:         make(map[string]*rateLimitEntry),
		entryTTL:        ttl,
		cleanupInterval: cleanup,
		lastCleanup:     time.Now(),
		now:             time.Now,
	}
}

func (l *rateLimiter) allow(key string) bool {
	if l == nil || key == "" {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= l.cleanupInterval {
		for k, entry := range l.entries {
			if now.Sub(entry.lastSeen) > l.entryTTL {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &rateLimitEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RateLimit rejects clients exceeding cfg with 429 Too Many Requests.
// Health probes are never limited. A non-positive rate or burst disables
// the middleware.
func RateLimit(cfg RateLimitConfig, metrics Metrics) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 || cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newRateLimiter(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.allow(ClientIP(r)) {
				if metrics != nil {
					metrics.RecordRateLimited()
				}
				logger.DebugCtx(r.Context(), "Rate limit exceeded", logger.KeyClientIP, ClientIP(r))
				w.Header().Set("Retry-After", "1")
				handlers.TooManyRequests(w, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
