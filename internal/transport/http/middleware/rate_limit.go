package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/infra/config"
)

const rateLimitMessage = "Too many requests"

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., client IP).
type IdentifierFunc func(*gin.Context) (string, bool)

type windowEntry struct {
	count       int
	windowStart time.Time
}

// RateLimiter enforces a fixed-window request limit per client identifier.
// State is process local, so each instance behind a load balancer counts
// independently, and a client that straddles a window boundary can be
// admitted up to twice the limit inside a single window-length span.
type RateLimiter struct {
	limit      int
	window     time.Duration
	maxEntries int
	identifier IdentifierFunc
	logger     *zap.Logger
	now        func() time.Time
	rejections prometheus.Counter

	mu      sync.Mutex
	entries map[string]*windowEntry
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(cfg config.RateLimitSettings, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := cfg.MaxRequests
	if limit <= 0 {
		limit = 10
	}

	window := cfg.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	return &RateLimiter{
		limit:      limit,
		window:     window,
		maxEntries: maxEntries,
		identifier: ForwardedForIdentifier(),
		logger:     logger,
		now:        time.Now,
		entries:    make(map[string]*windowEntry),
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// WithIdentifier overrides how the client identifier is extracted.
func (rl *RateLimiter) WithIdentifier(fn IdentifierFunc) *RateLimiter {
	if fn != nil {
		rl.identifier = fn
	}
	return rl
}

// WithRejectionCounter records every rejected request on the given counter.
func (rl *RateLimiter) WithRejectionCounter(counter prometheus.Counter) *RateLimiter {
	rl.rejections = counter
	return rl
}

// ForwardedForIdentifier builds an IdentifierFunc using the first address in
// the X-Forwarded-For header, falling back to the connection's client IP.
func ForwardedForIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first, true
			}
		}

		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// Limit returns a Gin middleware enforcing the fixed-window limit.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier, ok := rl.identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		allowed, remaining, reset := rl.admit(identifier)

		headers := c.Writer.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			retryAfter := int(math.Ceil(reset.Sub(rl.now()).Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))

			rl.logger.Warn("Rate limit exceeded",
				zap.String("identifier", identifier),
				zap.String("path", c.Request.URL.Path),
			)

			if rl.rejections != nil {
				rl.rejections.Inc()
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": rateLimitMessage})
			return
		}

		c.Next()
	}
}

// admit counts the request against the identifier's current window and
// reports whether it is allowed.
func (rl *RateLimiter) admit(identifier string) (allowed bool, remaining int, reset time.Time) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[identifier]
	if !ok || now.Sub(entry.windowStart) >= rl.window {
		if !ok && len(rl.entries) >= rl.maxEntries {
			rl.prune(now)
		}
		rl.entries[identifier] = &windowEntry{count: 1, windowStart: now}
		return true, rl.limit - 1, now.Add(rl.window)
	}

	reset = entry.windowStart.Add(rl.window)
	if entry.count >= rl.limit {
		return false, 0, reset
	}

	entry.count++
	return true, rl.limit - entry.count, reset
}

// prune drops entries whose window has elapsed. Called with the lock held
// when the map reaches its size cap, so an attacker rotating identifiers
// cannot grow it without bound.
func (rl *RateLimiter) prune(now time.Time) {
	for identifier, entry := range rl.entries {
		if now.Sub(entry.windowStart) >= rl.window {
			delete(rl.entries, identifier)
		}
	}
}
