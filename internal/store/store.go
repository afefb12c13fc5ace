// Package store define el acceso al credential store del gateway.
//
// Los clients se provisionan out-of-band y son read-only en runtime. Dos
// backends: memory (seeds del config YAML) y postgres (tabla clients).
package store

import (
	"context"
	"errors"
)

// ErrNotFound indica que el client no está registrado.
var ErrNotFound = errors.New("store: client not found")

// Client es una credencial de API consumer registrada.
type Client struct {
	ClientID   string
	SecretHash string // PHC argon2id; vacío para clients públicos
	GrantTypes []string
	Scopes     []string
	Tenant     string // tenant dueño; vacío => multi-tenant
}

// CredentialStore resuelve credenciales por client_id.
type CredentialStore interface {
	GetClient(ctx context.Context, clientID string) (*Client, error)
	Ping(ctx context.Context) error
	Close()
}

// GrantAllowed verifica si el grant está permitido para el client.
// Sin grants configurados no se permite nada: la lista es explícita.
func (c *Client) GrantAllowed(grantType string) bool {
	for _, g := range c.GrantTypes {
		if g == grantType {
			return true
		}
	}
	return false
}

// ScopeAllowed verifica si el scope está en la lista del client.
func (c *Client) ScopeAllowed(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
