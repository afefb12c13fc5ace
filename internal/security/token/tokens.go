// Package token genera credenciales opacas y sus digests.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// GenerateOpaque genera un token opaco aleatorio (base64url sin padding).
// nBytes mínimo efectivo: 16 (128 bits), el piso para session ids.
func GenerateOpaque(nBytes int) (string, error) {
	if nBytes < 16 {
		nBytes = 16
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Base64URL devuelve sha256(s) en base64url sin padding. Los refresh
// tokens y codes se persisten solo como digest, nunca en claro.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
