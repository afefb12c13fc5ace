// Package jwt firma y valida los access tokens del gateway (EdDSA).
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Issuer firma tokens con la clave activa del keystore.
type Issuer struct {
	Iss       string
	Keys      *Keystore
	AccessTTL time.Duration // TTL por defecto; cada emisión puede pisarlo
}

// ErrSigning indica una falla al firmar (fatal para el request).
var ErrSigning = errors.New("jwt: signing failed")

func NewIssuer(iss string, ks *Keystore, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Issuer{Iss: iss, Keys: ks, AccessTTL: accessTTL}
}

// AccessClaims son los claims propios de un access token del gateway.
type AccessClaims struct {
	Subject   string
	Audience  string
	Tenant    string
	Scope     string
	GrantType string
}

// IssueAccess emite un access token. Retorna (token, iat, exp).
// Invariante: exp - iat == ttl exacto (el TTL efectivo que se reporta en
// expires_in sale de acá, no se recalcula después).
func (i *Issuer) IssueAccess(c AccessClaims, ttl time.Duration) (string, time.Time, time.Time, error) {
	if ttl <= 0 {
		ttl = i.AccessTTL
	}
	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)

	kid, priv, _ := i.Keys.Active()
	claims := jwtv5.MapClaims{
		"iss":        i.Iss,
		"sub":        c.Subject,
		"aud":        c.Audience,
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"exp":        exp.Unix(),
		"tenant":     c.Tenant,
		"scope":      c.Scope,
		"grant_type": c.GrantType,
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = kid
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(priv)
	if err != nil {
		return "", time.Time{}, time.Time{}, ErrSigning
	}
	return signed, now, exp, nil
}
