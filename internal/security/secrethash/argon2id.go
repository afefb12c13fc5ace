// Package secrethash hashea y verifica client secrets con argon2id.
//
// Los secrets de clients confidenciales se provisionan como PHC strings; el
// gateway nunca almacena ni compara secretos en claro. La verificación usa
// comparación constant-time.
package secrethash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params de derivación argon2id.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

// Default calibrado para verificación en hot path de autenticación.
var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<salt>$<dk>
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("secrethash: empty secret")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara un secreto en claro contra un PHC string.
func Verify(plain, phc string) bool {
	// $argon2id$v=19$m=...,t=...,p=...$<salt>$<dk>
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var v int
	if n, _ := fmt.Sscanf(parts[2], "v=%d", &v); n != 1 || v != 19 {
		return false
	}
	var m, t, p int
	if n, _ := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); n != 3 {
		return false
	}
	saltB64, dkB64 := parts[4], parts[5]
	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	dkStored, err := base64.RawStdEncoding.DecodeString(dkB64)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, uint32(t), uint32(m), uint8(p), uint32(len(dkStored)))
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}
