package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_VentanaFija(t *testing.T) {
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "cliente-a")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d debería pasar", i+1)
		}
		if want := int64(3 - i - 1); res.Remaining != want {
			t.Fatalf("hit %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "cliente-a")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("el cuarto hit debe bloquearse")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, debe indicar cuánto esperar", res.RetryAfter)
	}
}

func TestMemoryLimiter_LlavesIndependientes(t *testing.T) {
	l := NewMemoryLimiter(1, time.Hour)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("a debería pasar")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("b es otra llave, debería pasar")
	}
	if res, _ := l.Allow(ctx, "a"); res.Allowed {
		t.Fatal("a agotó su cupo")
	}
}

func TestMemoryLimiter_VentanaNueva(t *testing.T) {
	l := NewMemoryLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("primer hit pasa")
	}
	if res, _ := l.Allow(ctx, "k"); res.Allowed {
		t.Fatal("cupo agotado en la ventana")
	}

	time.Sleep(60 * time.Millisecond)
	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("la ventana nueva resetea el contador")
	}
}

func TestMemoryLimiter_RetryAfterSubSegundo(t *testing.T) {
	window := 100 * time.Millisecond
	l := NewMemoryLimiter(1, window)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("primer hit pasa")
	}
	res, _ := l.Allow(ctx, "k")
	if res.Allowed {
		t.Fatal("cupo agotado en la ventana")
	}
	// El RetryAfter debe medirse contra la ventana real, no contra un
	// bucket redondeado a segundos.
	if res.RetryAfter <= 0 || res.RetryAfter > window {
		t.Fatalf("RetryAfter = %v, debe quedar en (0, %v]", res.RetryAfter, window)
	}
}
