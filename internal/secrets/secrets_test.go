package secrets

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnv_GetSecret(t *testing.T) {
	t.Setenv("SP_SIGNING_KEY", "abc123")
	t.Setenv("EMPTY_KEY", "   ")

	p := Env{Prefix: "SP_"}
	v, err := p.GetSecret(context.Background(), "SIGNING_KEY")
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if v != "abc123" {
		t.Errorf("valor = %q", v)
	}

	if _, err := (Env{}).GetSecret(context.Background(), "NO_EXISTE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("esperaba ErrNotFound, obtuve %v", err)
	}
	// Whitespace-only cuenta como ausente.
	if _, err := (Env{}).GetSecret(context.Background(), "EMPTY_KEY"); !errors.Is(err, ErrNotFound) {
		t.Errorf("esperaba ErrNotFound con valor vacío, obtuve %v", err)
	}
}

type countingProvider struct {
	calls atomic.Int64
	fail  int // cantidad de fallos transitorios antes de responder
	value string
}

func (p *countingProvider) GetSecret(_ context.Context, name string) (string, error) {
	n := p.calls.Add(1)
	if int(n) <= p.fail {
		return "", errors.New("timeout transitorio")
	}
	if p.value == "" {
		return "", ErrNotFound
	}
	return p.value, nil
}

func TestCached_CacheaResultado(t *testing.T) {
	inner := &countingProvider{value: "s3cr3t"}
	c := NewCached(inner, CachedConfig{TTL: time.Minute})

	for i := 0; i < 5; i++ {
		v, err := c.GetSecret(context.Background(), "KEY")
		if err != nil {
			t.Fatalf("GetSecret: %v", err)
		}
		if v != "s3cr3t" {
			t.Errorf("valor = %q", v)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("el provider recibió %d llamadas, esperaba 1", got)
	}
}

func TestCached_ReintentaTransitorios(t *testing.T) {
	inner := &countingProvider{value: "s3cr3t", fail: 2}
	c := NewCached(inner, CachedConfig{MaxRetries: 3, FetchTimeout: time.Second})

	v, err := c.GetSecret(context.Background(), "KEY")
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if v != "s3cr3t" {
		t.Errorf("valor = %q", v)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("llamadas = %d, esperaba 3", got)
	}
}

func TestCached_NotFoundNoReintenta(t *testing.T) {
	inner := &countingProvider{}
	c := NewCached(inner, CachedConfig{MaxRetries: 5})

	if _, err := c.GetSecret(context.Background(), "KEY"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, obtuve %v", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("llamadas = %d, ErrNotFound no debe reintentarse", got)
	}
}

func TestCached_Singleflight(t *testing.T) {
	inner := &countingProvider{value: "s3cr3t"}
	c := NewCached(inner, CachedConfig{TTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetSecret(context.Background(), "KEY"); err != nil {
				t.Errorf("GetSecret: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := inner.calls.Load(); got != 1 {
		t.Errorf("llamadas = %d, fetches concurrentes deben deduplicarse", got)
	}
}
