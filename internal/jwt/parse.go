package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores de validación. ErrExpired se distingue de ErrInvalid para que el
// middleware pueda responder token_expired versus invalid_token.
var (
	ErrInvalid       = errors.New("invalid_token")
	ErrExpired       = errors.New("token_expired")
	ErrInvalidIssuer = errors.New("invalid_issuer")
)

// leeway tolera pequeños desfases de reloj entre emisor y validador.
const leeway = 30 * time.Second

// Parse valida firma EdDSA, issuer, exp y nbf, y retorna las claims.
// La expiración se chequea explícitamente para distinguir ErrExpired de
// otros fallos (el parser de jwt/v5 colapsa todo en un solo error).
func Parse(token string, ks *Keystore, expectedIss string) (map[string]any, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return ks.PublicKeyByKID(kid)
	}

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithoutClaimsValidation(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	if expectedIss != "" {
		if iss, _ := claims["iss"].(string); iss != expectedIss {
			return nil, ErrInvalidIssuer
		}
	}

	now := time.Now()
	if expf, ok := claims["exp"].(float64); ok {
		if time.Unix(int64(expf), 0).Add(leeway).Before(now) {
			return nil, ErrExpired
		}
	} else {
		// Un token sin exp no es aceptable en este gateway.
		return nil, ErrInvalid
	}
	if nbff, ok := claims["nbf"].(float64); ok {
		if time.Unix(int64(nbff), 0).After(now.Add(leeway)) {
			return nil, ErrInvalid
		}
	}

	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}
