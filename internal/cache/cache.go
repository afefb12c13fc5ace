// Package cache provee el key-value TTL compartido del gateway.
//
// Backends:
//   - memory: in-process (patrickmn/go-cache), para una sola instancia.
//   - redis: compartido, requerido para despliegues multi-instancia detrás
//     de un load balancer (codes single-use y sesiones deben ser atómicos
//     entre instancias).
package cache

import (
	"context"
	"time"
)

// Client define las operaciones del cache TTL.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetDel obtiene y elimina atómicamente. Es la primitiva para consumir
	// credenciales single-use (authorization codes, refresh tokens).
	GetDel(ctx context.Context, key string) ([]byte, error)

	// Set guarda un valor con TTL. ttl == 0 => sin expiración.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete elimina una key. No es error si no existe.
	Delete(ctx context.Context, key string) error

	// Ping verifica la conexión al backend.
	Ping(ctx context.Context) error

	// Close libera recursos del backend.
	Close() error
}

// Config para crear un cliente.
type Config struct {
	Kind   string // "memory" | "redis"
	Addr   string
	DB     int
	Prefix string
}

// ErrNotFound indica que la key no existe (o ya expiró).
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "cache: key not found" }

// IsNotFound verifica si el error es por key inexistente.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// New crea un cliente según la configuración.
func New(cfg Config) (Client, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(cfg)
	default:
		return NewMemory(cfg.Prefix, 2*time.Minute), nil
	}
}
