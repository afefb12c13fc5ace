package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar del gateway. Mantener los nombres estables: los dashboards
// y las queries de auditoría dependen de ellos.

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// Tenant crea un campo para el tenant resuelto.
func Tenant(v string) zap.Field { return zap.String("tenant", v) }

// ClientID crea un campo para el client OAuth2.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Subject crea un campo para el subject del token (client o user).
func Subject(v string) zap.Field { return zap.String("sub", v) }

// SessionID crea un campo para el ID de sesión SallyPort.
func SessionID(v string) zap.Field { return zap.String("session_id", v) }

// DeploymentID crea un campo para el ID de deployment.
func DeploymentID(v string) zap.Field { return zap.String("deployment_id", v) }

// GrantType crea un campo para el grant OAuth2.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// String crea un campo string genérico.
func String(key, v string) zap.Field { return zap.String(key, v) }

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field { return zap.Int(key, v) }

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

// Duration crea un campo de duración.
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
