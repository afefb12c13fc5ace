// Package authz construye el authorization context de cada request.
//
// El contexto se reconstruye fresh por request a partir del token (o sesión)
// más el tenant registry; nunca se persiste. Es el único vehículo de
// identidad hacia los handlers: nada lee claims crudas río abajo.
package authz

import (
	"sort"
	"strings"

	"github.com/coaching2100/sallyport/internal/tenant"
)

// Capability es un permiso concreto asignable a un contexto.
type Capability string

const (
	CapDeploy       Capability = "deploy.trigger"
	CapSecrets      Capability = "secrets.manage"
	CapOAuth        Capability = "oauth.manage"
	CapConfig       Capability = "config.manage"
	CapAdmin        Capability = "admin.access"
	CapExperimental Capability = "experimental.features"
	CapAnalytics    Capability = "analytics.read"
)

// Personalization es el branding por tenant que consumen las interfaces.
type Personalization struct {
	DisplayName string `json:"display_name"`
	Theme       string `json:"theme"`
}

// Context es la vista request-scoped de quién llama, para qué tenant y con
// qué capacidades.
type Context struct {
	UserID             string
	TenantID           string
	IsolationLevel     int // 1..5
	Scope              []string
	Capabilities       []Capability
	EnterpriseFeatures []string
	Personalization    Personalization
	GrantType          string
	SessionID          string // vacío si la autenticación fue por bearer token
}

// HasCapability verifica una capability puntual.
func (c *Context) HasCapability(cap Capability) bool {
	for _, have := range c.Capabilities {
		if have == cap {
			return true
		}
	}
	return false
}

// HasScope verifica un scope puntual.
func (c *Context) HasScope(scope string) bool {
	for _, s := range c.Scope {
		if s == scope {
			return true
		}
	}
	return false
}

// Input agrupa lo extraído del token o sesión para construir el contexto.
type Input struct {
	Subject   string
	Scope     string   // space-delimited, como viaja en el claim
	Roles     []string // grupos SAO (Diamond/Emerald/Sapphire/Opal/Onyx)
	GrantType string
	SessionID string
}

// Build construye el contexto aplicando el tope de capabilities del tier.
// El orden de construcción importa: primero se resuelve el tenant (con sus
// límites), después se derivan y acotan las capabilities.
func Build(in Input, t *tenant.Tenant, limits tenant.Limits) *Context {
	scope := strings.Fields(in.Scope)

	caps := capsFromScopes(scope)
	for _, role := range in.Roles {
		caps = append(caps, capsFromRole(role)...)
	}
	caps = dedupe(caps)

	// Tope por tier: el set se trunca determinísticamente (orden estable)
	// para que dos instancias construyan el mismo contexto.
	if limits.MaxCapabilities >= 0 && len(caps) > limits.MaxCapabilities {
		caps = caps[:limits.MaxCapabilities]
	}

	var features []string
	for name, on := range t.FeatureFlags {
		if on {
			features = append(features, name)
		}
	}
	sort.Strings(features)

	return &Context{
		UserID:             in.Subject,
		TenantID:           t.ID,
		IsolationLevel:     t.IsolationLevel,
		Scope:              scope,
		Capabilities:       caps,
		EnterpriseFeatures: features,
		Personalization: Personalization{
			DisplayName: t.DisplayName,
			Theme:       t.Metadata["theme"],
		},
		GrantType: in.GrantType,
		SessionID: in.SessionID,
	}
}

// capsFromScopes mapea scopes OAuth2 a capabilities.
func capsFromScopes(scopes []string) []Capability {
	var caps []Capability
	for _, s := range scopes {
		switch s {
		case "deploy", "mcp_access":
			caps = append(caps, CapDeploy)
		case "admin_access":
			caps = append(caps, CapAdmin)
		case "analytics":
			caps = append(caps, CapAnalytics)
		case "system_admin":
			caps = append(caps, CapAdmin, CapConfig, CapSecrets)
		}
	}
	return caps
}

// capsFromRole mapea los grupos SAO a capabilities. Grupos desconocidos caen
// al perfil más restrictivo (Onyx: nada).
func capsFromRole(role string) []Capability {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "diamond":
		return []Capability{CapSecrets, CapOAuth, CapConfig, CapAdmin, CapExperimental, CapDeploy}
	case "emerald":
		return []Capability{CapSecrets, CapOAuth, CapConfig, CapAdmin, CapDeploy}
	case "sapphire":
		return []Capability{CapOAuth, CapConfig, CapAdmin, CapDeploy}
	case "opal":
		return []Capability{CapOAuth, CapAdmin}
	default: // onyx y desconocidos
		return nil
	}
}

// dedupe conserva el orden de primera aparición.
func dedupe(caps []Capability) []Capability {
	seen := make(map[Capability]struct{}, len(caps))
	out := caps[:0]
	for _, c := range caps {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
