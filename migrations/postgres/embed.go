// Package migrations embebe los archivos SQL del credential store.
package migrations

import "embed"

// FS contiene las migraciones para el backend postgres.
//
//go:embed sql/*.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "sql"
