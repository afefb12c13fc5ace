// Package validation contiene validaciones de formato de los parámetros
// OAuth2 que entran por el token endpoint.
package validation

import "regexp"

// Reglas de nombre de scope:
//   - Solo minúsculas; empieza y termina en [a-z0-9].
//   - El medio admite [a-z0-9:_.-]. Largo 1..64.
//   - Excluye espacios y punto y coma explícitamente.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName retorna true si el nombre cumple el patrón permitido.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// clientIDRe: identificadores de client estilo slug, 3..128 chars.
var clientIDRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\.-]{1,126}[a-zA-Z0-9]$`)

// ValidClientID retorna true si el client_id tiene formato aceptable.
func ValidClientID(id string) bool {
	return clientIDRe.MatchString(id)
}
