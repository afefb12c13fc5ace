package jwt

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/coaching2100/sallyport/internal/secrets"
)

// Keystore resuelve la clave de firma desde el secrets provider. No existe
// clave por defecto: si el secreto no está, el arranque falla (fail closed).
type Keystore struct {
	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// LoadKeystore lee la seed ed25519 (base64, 32 bytes) del secreto indicado.
// El KID se deriva del fingerprint de la clave pública, así dos instancias
// con la misma seed publican el mismo kid.
func LoadKeystore(ctx context.Context, provider secrets.Provider, secretName string) (*Keystore, error) {
	raw, err := provider.GetSecret(ctx, secretName)
	if err != nil {
		return nil, fmt.Errorf("jwt: signing key %s: %w", secretName, err)
	}
	seed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		// Aceptar también base64url (valores generados por `sallyport keygen`).
		seed, err = base64.RawURLEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("jwt: signing key %s: not base64", secretName)
		}
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("jwt: signing key %s: seed must be %d bytes, got %d", secretName, ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	sum := sha256.Sum256(pub)
	return &Keystore{
		kid:  base64.RawURLEncoding.EncodeToString(sum[:8]),
		priv: priv,
		pub:  pub,
	}, nil
}

// Active retorna (kid, priv, pub) de la clave de firma vigente.
func (k *Keystore) Active() (string, ed25519.PrivateKey, ed25519.PublicKey) {
	return k.kid, k.priv, k.pub
}

// PublicKeyByKID retorna la pubkey para un kid. Con una sola clave activa,
// cualquier kid distinto es un token firmado con otra clave => inválido.
func (k *Keystore) PublicKeyByKID(kid string) (ed25519.PublicKey, error) {
	if kid != "" && kid != k.kid {
		return nil, fmt.Errorf("jwt: unknown kid %q", kid)
	}
	return k.pub, nil
}
