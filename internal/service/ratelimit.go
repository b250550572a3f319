package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitSettings supplies the current limit on every check; staff may change it live.
type RateLimitSettings interface {
	RateLimit(ctx context.Context) (maxAttempts int, window time.Duration, err error)
}

// Limiter records order attempts per client identifier.
type Limiter interface {
	// Allow records the attempt and reports true while the client is under its limit.
	// Denied attempts are not recorded.
	Allow(ctx context.Context, clientID string) (bool, error)
}

// allowScript is a fixed window counter: the first attempt creates the key with a TTL
// equal to the window, later attempts increment it until the max is reached.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return 0
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// RedisLimiter shares counters across every server process.
type RedisLimiter struct {
	client   redis.Scripter
	settings RateLimitSettings
	prefix   string
}

func NewRedisLimiter(client redis.Scripter, settings RateLimitSettings) *RedisLimiter {
	return &RedisLimiter{client: client, settings: settings, prefix: "ratelimit:order:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	maxAttempts, window, err := l.settings.RateLimit(ctx)
	if err != nil {
		return false, fmt.Errorf("load rate limit settings: %w", err)
	}
	if maxAttempts <= 0 || window <= 0 {
		return true, nil
	}
	res, err := allowScript.Run(ctx, l.client, []string{l.prefix + clientID}, maxAttempts, window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return res == 1, nil
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the single-process fallback used when no Redis is configured.
type MemoryLimiter struct {
	settings RateLimitSettings
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryLimiter(settings RateLimitSettings) *MemoryLimiter {
	return &MemoryLimiter{settings: settings, now: time.Now, windows: make(map[string]*window)}
}

func (l *MemoryLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	maxAttempts, win, err := l.settings.RateLimit(ctx)
	if err != nil {
		return false, fmt.Errorf("load rate limit settings: %w", err)
	}
	if maxAttempts <= 0 || win <= 0 {
		return true, nil
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > 10000 {
		l.sweep(now)
	}
	w, ok := l.windows[clientID]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(win)}
		l.windows[clientID] = w
	}
	if w.count >= maxAttempts {
		return false, nil
	}
	w.count++
	return true, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
		}
	}
}
