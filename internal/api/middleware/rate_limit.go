package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"visitr/internal/pkg/response"
	"visitr/internal/platform/metrics"
)

// Limiter decides whether another request for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// MemoryLimiter is a per-process token bucket limiter.
type MemoryLimiter struct {
	store *sync.Map // map[string]*Bucket
	now   func() time.Time
	stop  chan struct{}
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
	// idle buckets are dropped by the cleanup loop
	lastAccess time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	rl := &MemoryLimiter{
		store: &sync.Map{},
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup(10 * time.Minute)
		}
	}
}

func (rl *MemoryLimiter) cleanup(idle time.Duration) {
	now := rl.now()
	rl.store.Range(func(key, value interface{}) bool {
		bucket := value.(*Bucket)
		bucket.mu.Lock()
		if now.Sub(bucket.lastAccess) > idle {
			rl.store.Delete(key)
		}
		bucket.mu.Unlock()
		return true
	})
}

func (rl *MemoryLimiter) Stop() {
	close(rl.stop)
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	refillRate := float64(limit) / window.Seconds()
	refillTokens := int(now.Sub(bucket.lastRefill).Seconds() * refillRate)

	if refillTokens > 0 {
		bucket.tokens = min(bucket.tokens+refillTokens, limit)
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true, nil
	}

	return false, nil
}

// RedisLimiter counts requests in fixed windows shared by every server
// instance.
type RedisLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, now: time.Now}
}

func windowKey(key string, window time.Duration, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", key, now.UnixNano()/int64(window))
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := windowKey(key, window, rl.now())

	pipe := rl.client.TxPipeline()
	count := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// ClientIP prefers proxy headers and falls back to the connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

// RateLimit limits requests per client IP within scope. Limiter failures
// let the request through.
func RateLimit(limiter Limiter, scope string, perMinute int) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if perMinute <= 0 {
				next(w, r)
				return
			}

			key := fmt.Sprintf("%s:%s", ClientIP(r), scope)
			allowed, err := limiter.Allow(r.Context(), key, perMinute, time.Minute)
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
				allowed = true
			}

			if !allowed {
				metrics.ObserveRateLimited(scope)
				w.Header().Set("Retry-After", "60")
				response.WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later", "")
				return
			}

			next(w, r)
		}
	}
}
