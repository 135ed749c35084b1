package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"frota/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window counters ─────────────────────────────────────────────────────

// WindowCounter counts hits of a key inside a fixed window. Hit returns the
// count including this hit and the time left in the window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter shares counts across server instances.
type RedisCounter struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCounter(rdb *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{rdb: rdb, prefix: prefix}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := r.prefix + ":" + key
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

type memoryEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryCounter keeps counts in process. Expired keys are dropped lazily, at
// most once per purgeInterval.
type MemoryCounter struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastPurge time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastPurge) >= purgeInterval {
		m.purge(now)
	}

	e, ok := m.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &memoryEntry{windowEnd: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd.Sub(now), nil
}

// must be called under lock
func (m *MemoryCounter) purge(now time.Time) {
	purged := 0
	for k, e := range m.entries {
		if now.After(e.windowEnd) {
			delete(m.entries, k)
			purged++
		}
	}
	m.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(m.entries)).Msg("rate limiter entries purged")
	}
}

// ── Middleware ────────────────────────────────────────────────────────────────

// RateLimiter allows limit requests per client IP per window. Counter errors
// let the request through.
func RateLimiter(counter WindowCounter, scope string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, resetIn, err := counter.Hit(c.Request.Context(), scope+":"+c.ClientIP(), window)
		if err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if count > int64(limit) {
			secs := int(resetIn.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter(counter WindowCounter) gin.HandlerFunc {
	return RateLimiter(counter, "login", 20, time.Minute, "Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// APIRateLimiter applies the configured per-minute limit to the API.
func APIRateLimiter(counter WindowCounter, perMinute int) gin.HandlerFunc {
	return RateLimiter(counter, "api", perMinute, time.Minute, "Muitas requisições. Tente novamente em instantes.")
}
