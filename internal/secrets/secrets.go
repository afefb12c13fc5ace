// Package secrets abstrae el secret store externo.
//
// El gateway nunca compila secretos: la clave de firma y la gateway key se
// resuelven por nombre contra un Provider. El provider embebido es env
// (variables de entorno); un secret manager real se conecta implementando
// Provider y envolviéndolo con Cached.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coaching2100/sallyport/internal/observability/logger"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound indica que el secreto no existe en el store.
var ErrNotFound = errors.New("secrets: not found")

// Provider resuelve secretos por nombre.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Env resuelve secretos desde variables de entorno, con prefijo opcional.
type Env struct {
	Prefix string
}

func (e Env) GetSecret(_ context.Context, name string) (string, error) {
	v := os.Getenv(e.Prefix + name)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}

// Cached envuelve un Provider con cache TTL, deduplicación de fetches
// concurrentes y reintentos acotados con backoff exponencial. Los timeouts
// cierran la operación: un secret store colgado no debe colgar requests.
type Cached struct {
	inner        Provider
	cache        *gocache.Cache
	group        singleflight.Group
	fetchTimeout time.Duration
	maxRetries   int
}

// CachedConfig parametriza el wrapper.
type CachedConfig struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	MaxRetries   int
}

// NewCached crea el wrapper con defaults razonables.
func NewCached(inner Provider, cfg CachedConfig) *Cached {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Cached{
		inner:        inner,
		cache:        gocache.New(cfg.TTL, time.Minute),
		fetchTimeout: cfg.FetchTimeout,
		maxRetries:   cfg.MaxRetries,
	}
}

func (c *Cached) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := c.cache.Get(name); ok {
		s, _ := v.(string)
		return s, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		return c.fetch(ctx, name)
	})
	if err != nil {
		return "", err
	}
	s := v.(string)
	c.cache.SetDefault(name, s)
	return s, nil
}

// fetch reintenta con backoff exponencial. ErrNotFound no se reintenta:
// es definitivo, no transitorio.
func (c *Cached) fetch(ctx context.Context, name string) (string, error) {
	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
		s, err := c.inner.GetSecret(fctx, name)
		cancel()
		if err == nil {
			return s, nil
		}
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		lastErr = err
		logger.From(ctx).Warn("secret fetch failed, retrying",
			logger.String("secret", name), logger.Int("attempt", attempt+1), logger.Err(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", fmt.Errorf("secrets: %s unavailable: %w", name, lastErr)
}
