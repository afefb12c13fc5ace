package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory("test", time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	b, err := c.Get(ctx, "k")
	if err != nil || string(b) != "v" {
		t.Fatalf("got %q, %v", b, err)
	}

	if _, err := c.Get(ctx, "inexistente"); !IsNotFound(err) {
		t.Fatalf("err = %v, expected not found", err)
	}
}

func TestMemory_GetDelSingleUse(t *testing.T) {
	c := NewMemory("", time.Minute)
	ctx := context.Background()
	_ = c.Set(ctx, "code", []byte("payload"), time.Minute)

	b, err := c.GetDel(ctx, "code")
	if err != nil || string(b) != "payload" {
		t.Fatalf("primer consumo: %q, %v", b, err)
	}
	if _, err := c.GetDel(ctx, "code"); !IsNotFound(err) {
		t.Fatalf("segundo consumo debe fallar, err = %v", err)
	}
}

// Con N consumidores concurrentes del mismo código, exactamente uno gana.
func TestMemory_GetDelConcurrente(t *testing.T) {
	c := NewMemory("", time.Minute)
	ctx := context.Background()
	_ = c.Set(ctx, "code", []byte("x"), time.Minute)

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetDel(ctx, "code"); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	got := 0
	for range wins {
		got++
	}
	if got != 1 {
		t.Fatalf("ganadores = %d, expected 1", got)
	}
}

func TestMemory_TTLExpira(t *testing.T) {
	c := NewMemory("", time.Minute)
	ctx := context.Background()
	_ = c.Set(ctx, "corto", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, err := c.Get(ctx, "corto"); !IsNotFound(err) {
		t.Fatalf("expirado debería ser not found, err = %v", err)
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory("", time.Minute)
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	// Delete de algo inexistente no es error.
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
}
