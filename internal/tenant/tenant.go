// Package tenant resuelve y describe los namespaces de clientes.
//
// El registry es read-only en runtime: los tenants se provisionan out-of-band
// (archivo YAML sincronizado desde el tenant-configuration service). El
// resolver es una función pura del request.
package tenant

import "time"

// Tier clasifica a los tenants por plan contratado.
type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
	TierDiamond      Tier = "diamond"
)

// Limits son los topes por tier. -1 significa ilimitado.
type Limits struct {
	MaxUsers          int `yaml:"max_users"`
	MaxServices       int `yaml:"max_services"`
	MaxAPICallsPerDay int `yaml:"max_api_calls_per_day"`
	// MaxCapabilities acota el tamaño del set de capabilities de cada
	// authorization context (configuración, no contrato).
	MaxCapabilities int `yaml:"max_capabilities"`
}

// Tenant es un namespace aislado de cliente.
type Tenant struct {
	ID             string            `yaml:"id"`
	DisplayName    string            `yaml:"display_name"`
	Tier           Tier              `yaml:"tier"`
	FeatureFlags   map[string]bool   `yaml:"feature_flags"`
	IsolationLevel int               `yaml:"isolation_level"` // 1..5
	Services       []string          `yaml:"services"`
	Metadata       map[string]string `yaml:"metadata"`
	LastActivity   time.Time         `yaml:"-"`
}

// TierLimits retorna los topes por tier. Los valores son defaults; el
// registry puede sobreescribirlos por tenant.
func TierLimits(t Tier) Limits {
	switch t {
	case TierProfessional:
		return Limits{MaxUsers: 50, MaxServices: 10, MaxAPICallsPerDay: 10000, MaxCapabilities: 6}
	case TierEnterprise:
		return Limits{MaxUsers: 1000, MaxServices: 100, MaxAPICallsPerDay: 100000, MaxCapabilities: 9}
	case TierDiamond:
		return Limits{MaxUsers: -1, MaxServices: -1, MaxAPICallsPerDay: -1, MaxCapabilities: -1}
	default: // starter y desconocidos
		return Limits{MaxUsers: 5, MaxServices: 1, MaxAPICallsPerDay: 1000, MaxCapabilities: 3}
	}
}

// TierScopes retorna los scopes que el tier habilita además de los del client.
func TierScopes(t Tier) []string {
	base := []string{"offline_access"}
	switch t {
	case TierProfessional:
		return append(base, "basic_profile", "mcp_access")
	case TierEnterprise:
		return append(base, "basic_profile", "mcp_access", "admin_access", "analytics")
	case TierDiamond:
		return append(base, "basic_profile", "mcp_access", "admin_access", "analytics", "system_admin")
	default:
		return append(base, "basic_profile")
	}
}

// AccessTokenTTL permite TTLs distintos por tier. 0 => usar el default global.
func (t *Tenant) AccessTokenTTL() time.Duration {
	if t == nil {
		return 0
	}
	// Tiers regulados suelen pedir tokens más cortos; se modela como flag.
	if t.FeatureFlags["short_lived_tokens"] {
		return 15 * time.Minute
	}
	return 0
}
