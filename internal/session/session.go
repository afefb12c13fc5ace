// Package session mantiene el estado autenticado server-side de los flujos
// SallyPort. Las sesiones viven en el cache TTL compartido: con backend
// redis sobreviven a múltiples instancias del gateway.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coaching2100/sallyport/internal/cache"
	tokens "github.com/coaching2100/sallyport/internal/security/token"
)

// Session es el estado autenticado asociado a un session id opaco.
type Session struct {
	SessionID   string    `json:"session_id"`
	UserUUID    string    `json:"user_uuid"`
	TenantID    string    `json:"tenant_id"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store crea, resuelve e invalida sesiones.
type Store struct {
	cache cache.Client
	ttl   time.Duration
}

// NewStore construye el store con el TTL configurado.
func NewStore(c cache.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Store{cache: c, ttl: ttl}
}

func key(sessionID string) string { return "sess:" + sessionID }

// Create genera un session id de 192 bits (margen sobre el piso de 128) y
// persiste la sesión con TTL.
func (s *Store) Create(ctx context.Context, userUUID, tenantID string, permissions []string) (*Session, error) {
	id, err := tokens.GenerateOpaque(24)
	if err != nil {
		return nil, fmt.Errorf("session: generate id: %w", err)
	}
	now := time.Now().UTC()
	sess := &Session{
		SessionID:   id,
		UserUUID:    userUUID,
		TenantID:    tenantID,
		Permissions: permissions,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key(id), b, s.ttl); err != nil {
		return nil, fmt.Errorf("session: persist: %w", err)
	}
	return sess, nil
}

// Get resuelve una sesión. Expirada => nil y se evicta (lazy expiry; el
// backend también expira por TTL pero el chequeo explícito cubre relojes
// desincronizados entre instancias).
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	b, err := s.cache.Get(ctx, key(sessionID))
	if cache.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: lookup: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		_ = s.cache.Delete(ctx, key(sessionID))
		return nil, nil
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.cache.Delete(ctx, key(sessionID))
		return nil, nil
	}
	return &sess, nil
}

// Invalidate destruye una sesión (logout o anomalía detectada).
func (s *Store) Invalidate(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, key(sessionID))
}
