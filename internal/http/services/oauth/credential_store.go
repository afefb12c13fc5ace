package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coaching2100/sallyport/internal/cache"
	tokens "github.com/coaching2100/sallyport/internal/security/token"
)

// Prefijos de llaves en el cache compartido. Los códigos y refresh tokens
// se indexan por su hash SHA-256, nunca por el valor crudo.
const (
	keyCode           = "code:"
	keyRefresh        = "rt:"
	keyRefreshUsed    = "rtused:"
	keyRefreshRevoked = "rtrev:"
)

// CodeStore emite y consume authorization codes de un solo uso.
type CodeStore struct {
	cache cache.Client
	ttl   time.Duration
}

func NewCodeStore(c cache.Client, ttl time.Duration) *CodeStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CodeStore{cache: c, ttl: ttl}
}

// Issue genera un código opaco y persiste su payload con TTL.
func (s *CodeStore) Issue(ctx context.Context, p AuthCodePayload) (string, error) {
	code, err := tokens.GenerateOpaque(32)
	if err != nil {
		return "", fmt.Errorf("codestore: generate: %w", err)
	}
	p.ExpiresAt = time.Now().UTC().Add(s.ttl)
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, keyCode+tokens.SHA256Base64URL(code), b, s.ttl); err != nil {
		return "", fmt.Errorf("codestore: persist: %w", err)
	}
	return code, nil
}

// Consume retira el código atómicamente (GetDel). Un segundo consumo del
// mismo código encuentra la llave ausente: el replay muere acá.
func (s *CodeStore) Consume(ctx context.Context, code string) (*AuthCodePayload, error) {
	b, err := s.cache.GetDel(ctx, keyCode+tokens.SHA256Base64URL(code))
	if cache.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("codestore: consume: %w", err)
	}
	var p AuthCodePayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, nil
	}
	if time.Now().After(p.ExpiresAt) {
		return nil, nil
	}
	return &p, nil
}

// RefreshStore rota refresh tokens single-use con revocación por familia:
// detectar el reuso de un token ya consumido quema toda la cadena.
type RefreshStore struct {
	cache cache.Client
	ttl   time.Duration
}

func NewRefreshStore(c cache.Client, ttl time.Duration) *RefreshStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RefreshStore{cache: c, ttl: ttl}
}

// TTL expone la vigencia configurada.
func (s *RefreshStore) TTL() time.Duration { return s.ttl }

// Issue genera un refresh token nuevo. FamilyID vacío arranca familia nueva.
func (s *RefreshStore) Issue(ctx context.Context, p RefreshPayload) (string, error) {
	raw, err := tokens.GenerateOpaque(32)
	if err != nil {
		return "", fmt.Errorf("refreshstore: generate: %w", err)
	}
	if p.FamilyID == "" {
		fam, err := tokens.GenerateOpaque(16)
		if err != nil {
			return "", fmt.Errorf("refreshstore: family: %w", err)
		}
		p.FamilyID = fam
	}
	p.ExpiresAt = time.Now().UTC().Add(s.ttl)
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, keyRefresh+tokens.SHA256Base64URL(raw), b, s.ttl); err != nil {
		return "", fmt.Errorf("refreshstore: persist: %w", err)
	}
	return raw, nil
}

// Consume retira el token atómicamente y deja una marca de "ya usado" con el
// mismo TTL. Si el token no existe pero la marca sí, es un replay: se revoca
// la familia completa y el llamador recibe ErrTokenInvalidGrant.
func (s *RefreshStore) Consume(ctx context.Context, raw string) (*RefreshPayload, error) {
	h := tokens.SHA256Base64URL(raw)

	b, err := s.cache.GetDel(ctx, keyRefresh+h)
	if cache.IsNotFound(err) {
		// ¿Reuso de un token ya rotado?
		if fam, ferr := s.cache.Get(ctx, keyRefreshUsed+h); ferr == nil {
			_ = s.cache.Set(ctx, keyRefreshRevoked+string(fam), []byte("1"), s.ttl)
		}
		return nil, ErrTokenInvalidGrant
	}
	if err != nil {
		return nil, fmt.Errorf("refreshstore: consume: %w", err)
	}

	var p RefreshPayload
	if jerr := json.Unmarshal(b, &p); jerr != nil {
		return nil, ErrTokenInvalidGrant
	}
	if time.Now().After(p.ExpiresAt) {
		return nil, ErrTokenInvalidGrant
	}
	if _, rerr := s.cache.Get(ctx, keyRefreshRevoked+p.FamilyID); rerr == nil {
		return nil, ErrTokenInvalidGrant
	}

	_ = s.cache.Set(ctx, keyRefreshUsed+h, []byte(p.FamilyID), s.ttl)
	return &p, nil
}
