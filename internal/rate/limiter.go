// Package rate implementa rate limiting fixed-window para los endpoints de
// autenticación. Backend redis para despliegues multi-instancia; memory para
// una sola instancia.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result es el veredicto de un hit contra el limiter.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter decide si un hit identificado por key pasa.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE).
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	// UnixNano: ventanas sub-segundo no pueden colapsar en un bucket por
	// segundo.
	winStart := now.Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.UnixNano())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// expiry en el primer hit de la ventana
	if incr.Val() == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
		ttl = l.Client.TTL(ctx, redisKey)
	}

	hits := incr.Val()
	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: allowed, Remaining: remaining}
	if !allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			res.RetryAfter = time.Duration(math.Ceil(l.Window.Seconds())) * time.Second
		}
	}
	return res, nil
}

// MemoryLimiter: fixed window in-process. Mismo algoritmo que el de redis,
// para entornos de una sola instancia y tests.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu   sync.Mutex
	hits map[string]int64
	win  map[string]int64 // key -> UnixNano del inicio de ventana
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		hits:   make(map[string]int64),
		win:    make(map[string]int64),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.win[key] != winStart {
		l.win[key] = winStart
		l.hits[key] = 0
	}
	l.hits[key]++
	hits := l.hits[key]

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: allowed, Remaining: remaining}
	if !allowed {
		res.RetryAfter = time.Unix(0, winStart).Add(l.Window).Sub(now)
	}
	return res, nil
}
