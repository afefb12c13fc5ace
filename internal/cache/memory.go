package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache. El mutex propio cubre
// GetDel: go-cache no expone una operación get+delete atómica.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	mu     sync.Mutex
}

// NewMemory crea un cache in-process con janitor de expiración.
func NewMemory(prefix string, defaultTTL time.Duration) Client {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(defaultTTL, time.Minute),
	}
}

func (m *memoryClient) key(k string) string {
	if m.prefix == "" {
		return k
	}
	return m.prefix + ":" + k
}

func (m *memoryClient) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(m.key(key))
	if !ok {
		return nil, ErrNotFound
	}
	b, _ := v.([]byte)
	return b, nil
}

func (m *memoryClient) GetDel(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(key)
	v, ok := m.c.Get(k)
	if !ok {
		return nil, ErrNotFound
	}
	m.c.Delete(k)
	b, _ := v.([]byte)
	return b, nil
}

func (m *memoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		m.c.Set(m.key(key), value, gocache.NoExpiration)
		return nil
	}
	m.c.Set(m.key(key), value, ttl)
	return nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(m.key(key))
	return nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
