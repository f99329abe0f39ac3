// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

// RateLimitConfig configures one limiter. With FailOpen set, a Redis
// outage degrades to a per-process token bucket; without it the request
// is refused with 503.
type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

type RateLimiter struct {
	shared *redis_rate.Limiter
	local  *localBuckets
	cfg    RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		shared: redis_rate.NewLimiter(rdb),
		local:  newLocalBuckets(),
		cfg:    cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.cfg.KeyFunc(r)

		res, ok := rl.take(r.Context(), key)
		if !ok {
			core.JSONError(w, core.UnavailableError("rate limiter unavailable"))
			return
		}

		writeQuotaHeaders(w, rl.cfg.Limit, res)

		if res.Allowed == 0 {
			retry := retryAfterSeconds(res.RetryAfter)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			core.JSONError(w, core.RateLimitedError(retry))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) take(ctx context.Context, key string) (*redis_rate.Result, bool) {
	res, err := rl.shared.Allow(ctx, key, rl.cfg.Limit)
	if err == nil {
		return res, true
	}

	if !rl.cfg.FailOpen {
		slog.ErrorContext(ctx, "rate limiter unavailable", "error", err, "key", key)
		return nil, false
	}

	slog.WarnContext(ctx, "rate limiter degraded to local buckets", "error", err, "key", key)
	return rl.local.take(key, rl.cfg.Limit, time.Now()), true
}

// ClientIP trusts the last X-Forwarded-For hop, which is the address seen
// by the nearest proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(xff[strings.LastIndexByte(xff, ',')+1:])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + ClientIP(r)
}

// KeyByIPAndEndpoint gives every credential endpoint its own budget so a
// login brute force cannot exhaust refresh or register.
func KeyByIPAndEndpoint(r *http.Request) string {
	return KeyByIP(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

// normalizeEndpoint collapses resource ids so /posts/<uuid> and /posts/<n>
// share a key.
func normalizeEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if isResourceID(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isResourceID(seg string) bool {
	if len(seg) == 36 {
		if _, err := uuid.Parse(seg); err == nil {
			return true
		}
	}
	_, err := strconv.ParseUint(seg, 10, 64)
	return err == nil
}

func writeQuotaHeaders(w http.ResponseWriter, limit redis_rate.Limit, res *redis_rate.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
}

func retryAfterSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}

const (
	bucketIdleTTL   = 10 * time.Minute
	bucketSweepEach = 5 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is the in-process stand-in used while Redis is down. Idle
// buckets are swept lazily on access.
type localBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLocalBuckets() *localBuckets {
	return &localBuckets{
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (l *localBuckets) take(key string, limit redis_rate.Limit, now time.Time) *redis_rate.Result {
	perSecond := rate.Limit(float64(limit.Rate) / limit.Period.Seconds())
	interval := time.Duration(float64(time.Second) / float64(perSecond))

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= bucketSweepEach {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(perSecond, limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		ResetAfter: interval,
		RetryAfter: -1,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = int(b.limiter.TokensAt(now))

	return res
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

// PerWindow builds a limit over an arbitrary period. A non-positive
// period falls back to one minute.
func PerWindow(rate, burst int, period time.Duration) redis_rate.Limit {
	if period <= 0 {
		period = time.Minute
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: period}
}
