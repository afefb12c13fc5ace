package tenant

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry resuelve tenants por ID. Read-only salvo por LastActivity, que se
// marca en cada request autenticado (alimenta /api/tenant/{id}/status).
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]*Tenant
	limits  map[string]Limits // overrides por tenant
}

// registryFile es el formato del YAML provisionado out-of-band.
type registryFile struct {
	Tenants []struct {
		Tenant `yaml:",inline"`
		Limits *Limits `yaml:"limits"`
	} `yaml:"tenants"`
}

// NewRegistry construye un registry vacío con solo el tenant Default.
func NewRegistry() *Registry {
	r := &Registry{
		tenants: make(map[string]*Tenant),
		limits:  make(map[string]Limits),
	}
	r.tenants[Default] = &Tenant{
		ID:             Default,
		DisplayName:    "Default",
		Tier:           TierStarter,
		IsolationLevel: 1,
	}
	return r
}

// LoadRegistry lee el archivo YAML de tenants. Path vacío => registry con
// solo el tenant default.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenant registry: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("tenant registry: parse %s: %w", path, err)
	}
	for i := range f.Tenants {
		t := f.Tenants[i].Tenant
		if t.ID == "" {
			return nil, fmt.Errorf("tenant registry: entrada sin id en %s", path)
		}
		if t.Tier == "" {
			t.Tier = TierStarter
		}
		if t.IsolationLevel < 1 || t.IsolationLevel > 5 {
			t.IsolationLevel = 1
		}
		tt := t
		r.tenants[t.ID] = &tt
		if f.Tenants[i].Limits != nil {
			r.limits[t.ID] = *f.Tenants[i].Limits
		}
	}
	return r, nil
}

// Get retorna el tenant o (nil, false). El puntero retornado es una copia
// inmutable salvo LastActivity.
func (r *Registry) Get(id string) (*Tenant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// GetOrDefault retorna el tenant o el Default si no está registrado.
// Tenants no registrados operan con capacidades mínimas, nunca fallan.
func (r *Registry) GetOrDefault(id string) *Tenant {
	if t, ok := r.Get(id); ok {
		return t
	}
	t, _ := r.Get(Default)
	// Conservar el ID pedido: el token igual debe portar el tenant resuelto.
	t.ID = normalize(id)
	return t
}

// LimitsFor retorna los topes efectivos (override del registry o default del
// tier).
func (r *Registry) LimitsFor(t *Tenant) Limits {
	r.mu.RLock()
	l, ok := r.limits[t.ID]
	r.mu.RUnlock()
	if ok {
		return l
	}
	return TierLimits(t.Tier)
}

// Touch marca actividad del tenant.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tenants[id]; ok {
		t.LastActivity = time.Now().UTC()
	}
}

// LastActivity retorna la última actividad registrada (zero si nunca).
func (r *Registry) LastActivity(id string) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tenants[id]; ok {
		return t.LastActivity
	}
	return time.Time{}
}
