package tenantstatus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coaching2100/sallyport/internal/tenant"
)

func testRegistry(t *testing.T) *tenant.Registry {
	t.Helper()
	const yaml = `
tenants:
  - id: zaxon
    display_name: Zaxon Industries
    tier: enterprise
    services: [mcp-client]
    feature_flags:
      advanced_analytics: true
      beta_console: false
  - id: cerrado
    display_name: Cerrado
    tier: starter
    feature_flags:
      oauth: false
`
	p := filepath.Join(t.TempDir(), "tenants.yaml")
	if err := os.WriteFile(p, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := tenant.LoadRegistry(p)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStatus_Snapshot(t *testing.T) {
	reg := testRegistry(t)
	s := NewService(reg, "2100.cool")

	st, err := s.Status(context.Background(), "zaxon")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Tenant != "zaxon" || st.Status != "active" {
		t.Errorf("snapshot = %+v", st)
	}
	if st.MCPEndpoint != "https://mcp.zaxon.2100.cool" {
		t.Errorf("MCPEndpoint = %q", st.MCPEndpoint)
	}
	if !st.OAuthEnabled {
		t.Error("OAuthEnabled debe defaultear a true")
	}
	// Solo los flags encendidos se publican.
	if len(st.Features) != 1 || st.Features[0] != "advanced_analytics" {
		t.Errorf("Features = %v", st.Features)
	}
	if st.LastActivity != nil {
		t.Error("sin actividad registrada LastActivity debe ser nil")
	}

	reg.Touch("zaxon")
	st, err = s.Status(context.Background(), "zaxon")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.LastActivity == nil {
		t.Error("Touch debe reflejarse en LastActivity")
	}
}

func TestStatus_OAuthDeshabilitado(t *testing.T) {
	s := NewService(testRegistry(t), "2100.cool")

	st, err := s.Status(context.Background(), "cerrado")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.OAuthEnabled {
		t.Error("flag oauth:false debe apagar oauth_enabled")
	}
}

func TestStatus_TenantDesconocido(t *testing.T) {
	s := NewService(testRegistry(t), "2100.cool")

	if _, err := s.Status(context.Background(), "fantasma"); !errors.Is(err, ErrUnknownTenant) {
		t.Errorf("err = %v, esperaba ErrUnknownTenant", err)
	}
}
