// Package tenantstatus expone el estado operativo por tenant.
package tenantstatus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/coaching2100/sallyport/internal/tenant"
)

// Service resuelve el snapshot de estado de un tenant registrado.
type Service interface {
	Status(ctx context.Context, tenantID string) (*Status, error)
}

// ErrUnknownTenant indica que el tenant no está en el registry. A diferencia
// de la resolución de requests (que degrada a default), el endpoint de
// status no inventa tenants.
var ErrUnknownTenant = errors.New("tenant_not_found")

// Status es el snapshot que consume el dashboard de operaciones.
type Status struct {
	Tenant         string        `json:"tenant"`
	DisplayName    string        `json:"display_name"`
	Status         string        `json:"status"`
	Tier           string        `json:"tier"`
	IsolationLevel int           `json:"isolation_level"`
	MCPEndpoint    string        `json:"mcp_endpoint"`
	OAuthEnabled   bool          `json:"oauth_enabled"`
	Limits         tenant.Limits `json:"limits"`
	Features       []string      `json:"features"`
	Services       []string      `json:"services"`
	LastActivity   *time.Time    `json:"last_activity,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

type statusService struct {
	registry     *tenant.Registry
	domainSuffix string
}

// NewService crea el service sobre el tenant registry. domainSuffix arma el
// mcp_endpoint publicado (mcp.<tenant>.<suffix>).
func NewService(r *tenant.Registry, domainSuffix string) Service {
	if domainSuffix == "" {
		domainSuffix = "2100.cool"
	}
	return &statusService{registry: r, domainSuffix: domainSuffix}
}

func (s *statusService) Status(_ context.Context, tenantID string) (*Status, error) {
	t, ok := s.registry.Get(tenantID)
	if !ok {
		return nil, ErrUnknownTenant
	}

	var features []string
	for name, on := range t.FeatureFlags {
		if on {
			features = append(features, name)
		}
	}
	sort.Strings(features)

	// OAuth queda habilitado salvo flag explícito en contrario.
	oauthOn := true
	if v, ok := t.FeatureFlags["oauth"]; ok {
		oauthOn = v
	}

	st := &Status{
		Tenant:         t.ID,
		DisplayName:    t.DisplayName,
		Status:         "active",
		Tier:           string(t.Tier),
		IsolationLevel: t.IsolationLevel,
		MCPEndpoint:    fmt.Sprintf("https://mcp.%s.%s", t.ID, s.domainSuffix),
		OAuthEnabled:   oauthOn,
		Limits:         s.registry.LimitsFor(t),
		Features:       features,
		Services:       t.Services,
		Timestamp:      time.Now().UTC(),
	}
	if last := s.registry.LastActivity(t.ID); !last.IsZero() {
		st.LastActivity = &last
	}
	return st, nil
}
