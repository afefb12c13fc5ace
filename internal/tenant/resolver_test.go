package tenant

import (
	"net/http/httptest"
	"testing"
)

func TestResolve_HeaderWins(t *testing.T) {
	r := httptest.NewRequest("POST", "http://zaxon.2100.cool/api/gcp/token", nil)
	r.Header.Set("X-Tenant-Id", "Coaching2100")

	if got := Resolve(r, "otro"); got != "coaching2100" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_BodyOverSubdomain(t *testing.T) {
	r := httptest.NewRequest("POST", "http://zaxon.2100.cool/api/gcp/token", nil)
	if got := Resolve(r, "acme"); got != "acme" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_Subdomain(t *testing.T) {
	cases := map[string]string{
		"http://zaxon.2100.cool/x":      "zaxon",
		"http://mcp.zaxon.2100.cool/x":  "mcp",
		"http://zaxon.2100.cool:8080/x": "zaxon",
	}
	for url, want := range cases {
		r := httptest.NewRequest("GET", url, nil)
		if got := Resolve(r, ""); got != want {
			t.Fatalf("%s: got %q, want %q", url, got, want)
		}
	}
}

func TestResolve_DefaultFallback(t *testing.T) {
	for _, url := range []string{
		"http://localhost:8080/x",
		"http://2100.cool/x",
	} {
		r := httptest.NewRequest("GET", url, nil)
		if got := Resolve(r, ""); got != Default {
			t.Fatalf("%s: got %q, want default", url, got)
		}
	}
}

func TestResolve_Normaliza(t *testing.T) {
	r := httptest.NewRequest("GET", "http://localhost/x", nil)
	r.Header.Set("X-Tenant-Id", "  ZaXon-01  ")
	if got := Resolve(r, ""); got != "zaxon-01" {
		t.Fatalf("got %q", got)
	}

	// Solo caracteres inválidos => default, nunca un id vacío.
	r2 := httptest.NewRequest("GET", "http://localhost/x", nil)
	r2.Header.Set("X-Tenant-Id", "!!!")
	if got := Resolve(r2, ""); got != Default {
		t.Fatalf("got %q", got)
	}
}
