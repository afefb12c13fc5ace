package tenant

import (
	"net/http"
	"strings"
)

// Default es el tenant al que degrada la resolución cuando el request no
// trae ninguno. Mapea a capacidades mínimas (tier starter, sin flags).
const Default = "default"

// Resolve deriva el tenant de un request. Orden de prioridad:
//
//	1. Header X-Tenant-Id
//	2. Campo explícito del body (lo parsea el controller y lo pasa acá)
//	3. Subdominio: primer label del hostname si tiene más de dos labels
//	4. Default
//
// Nunca falla: degrada a Default. Función pura del request, por eso la
// resolución es idempotente mientras el request no mute.
func Resolve(r *http.Request, bodyTenant string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Tenant-Id")); v != "" {
		return normalize(v)
	}
	if v := strings.TrimSpace(bodyTenant); v != "" {
		return normalize(v)
	}
	if v := fromHostname(r.Host); v != "" {
		return normalize(v)
	}
	return Default
}

// fromHostname extrae el subdominio como tenant. El primer label solo cuenta
// si el hostname tiene más de dos labels (zaxon.2100.cool => zaxon;
// localhost => "").
func fromHostname(host string) string {
	h := host
	if i := strings.IndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	parts := strings.Split(h, ".")
	if len(parts) > 2 {
		return parts[0]
	}
	return ""
}

// normalize acota el identificador a minúsculas alfanuméricas con guiones,
// igual que hace el provisioner al crear dominios mcp.<tenant>.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return Default
	}
	return b.String()
}
