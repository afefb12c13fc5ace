package store

import "context"

// memoryStore sirve credenciales seeded desde config. Inmutable después de
// construido, por eso no necesita locks.
type memoryStore struct {
	clients map[string]*Client
}

// NewMemory construye el store desde los seeds de configuración.
func NewMemory(seeds []Client) CredentialStore {
	m := make(map[string]*Client, len(seeds))
	for i := range seeds {
		c := seeds[i]
		m[c.ClientID] = &c
	}
	return &memoryStore{clients: m}
}

func (s *memoryStore) GetClient(_ context.Context, clientID string) (*Client, error) {
	c, ok := s.clients[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }
func (s *memoryStore) Close()                     {}
