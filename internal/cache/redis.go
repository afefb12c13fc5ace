package cache

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type redisClient struct {
	prefix string
	c      *rdb.Client
}

// NewRedis crea un cliente Redis. No valida la conexión acá: usar Ping en el
// arranque para fallar temprano.
func NewRedis(cfg Config) (Client, error) {
	return &redisClient{
		prefix: cfg.Prefix,
		c:      rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB}),
	}, nil
}

func (r *redisClient) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *redisClient) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.c.Get(ctx, r.key(key)).Bytes()
	if err == rdb.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *redisClient) GetDel(ctx context.Context, key string) ([]byte, error) {
	b, err := r.c.GetDel(ctx, r.key(key)).Bytes()
	if err == rdb.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *redisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.c.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *redisClient) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, r.key(key)).Err()
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *redisClient) Close() error { return r.c.Close() }

// RedisBacked la implementan los clientes con un redis subyacente, para
// componentes que necesitan primitivas nativas (INCR/EXPIRE del limiter).
type RedisBacked interface {
	Redis() *rdb.Client
}

func (r *redisClient) Redis() *rdb.Client { return r.c }
