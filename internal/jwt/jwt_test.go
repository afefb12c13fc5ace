package jwt

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

type fakeProvider map[string]string

func (f fakeProvider) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		t.Fatal(err)
	}
	p := fakeProvider{"SIGNING_KEY": base64.StdEncoding.EncodeToString(seed)}
	ks, err := LoadKeystore(context.Background(), p, "SIGNING_KEY")
	if err != nil {
		t.Fatalf("LoadKeystore: %v", err)
	}
	return ks
}

func TestLoadKeystore_FailClosed(t *testing.T) {
	if _, err := LoadKeystore(context.Background(), fakeProvider{}, "MISSING"); err == nil {
		t.Fatal("expected error without provisioned key")
	}
	p := fakeProvider{"SHORT": base64.StdEncoding.EncodeToString([]byte("corta"))}
	if _, err := LoadKeystore(context.Background(), p, "SHORT"); err == nil {
		t.Fatal("expected error for wrong seed size")
	}
}

func TestIssueAndParse_RoundTrip(t *testing.T) {
	ks := testKeystore(t)
	iss := NewIssuer("https://sallyport.test", ks, time.Hour)

	tok, iat, exp, err := iss.IssueAccess(AccessClaims{
		Subject:   "client-a",
		Audience:  "sallyport",
		Tenant:    "zaxon",
		Scope:     "deploy mcp_access",
		GrantType: "client_credentials",
	}, 0)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if got := exp.Sub(iat); got != time.Hour {
		t.Fatalf("exp-iat = %v, expected exactly 1h", got)
	}

	claims, err := Parse(tok, ks, "https://sallyport.test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims["sub"] != "client-a" || claims["tenant"] != "zaxon" {
		t.Fatalf("claims inesperados: %v", claims)
	}
	if claims["grant_type"] != "client_credentials" {
		t.Fatalf("grant_type = %v", claims["grant_type"])
	}
}

func TestParse_TTLOverride(t *testing.T) {
	ks := testKeystore(t)
	iss := NewIssuer("https://sallyport.test", ks, time.Hour)

	_, iat, exp, err := iss.IssueAccess(AccessClaims{Subject: "s", Tenant: "t"}, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if got := exp.Sub(iat); got != 15*time.Minute {
		t.Fatalf("exp-iat = %v, expected 15m", got)
	}
}

func TestParse_Expired(t *testing.T) {
	ks := testKeystore(t)

	// Token firmado a mano con exp más viejo que el leeway de 30s.
	kid, priv, _ := ks.Active()
	now := time.Now()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, jwtv5.MapClaims{
		"iss": "https://sallyport.test",
		"sub": "s",
		"iat": now.Add(-time.Hour).Unix(),
		"exp": now.Add(-2 * time.Minute).Unix(),
	})
	tk.Header["kid"] = kid
	tok, err := tk.SignedString(priv)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Parse(tok, ks, "https://sallyport.test"); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, expected ErrExpired", err)
	}
}

func TestParse_MissingExp(t *testing.T) {
	ks := testKeystore(t)
	kid, priv, _ := ks.Active()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, jwtv5.MapClaims{
		"iss": "https://sallyport.test",
		"sub": "s",
	})
	tk.Header["kid"] = kid
	tok, err := tk.SignedString(priv)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Parse(tok, ks, "https://sallyport.test"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, expected ErrInvalid para token sin exp", err)
	}
}

func TestParse_WrongIssuer(t *testing.T) {
	ks := testKeystore(t)
	iss := NewIssuer("https://otro.test", ks, time.Hour)
	tok, _, _, _ := iss.IssueAccess(AccessClaims{Subject: "s", Tenant: "t"}, 0)

	if _, err := Parse(tok, ks, "https://sallyport.test"); !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("err = %v, expected ErrInvalidIssuer", err)
	}
}

func TestParse_WrongKey(t *testing.T) {
	ks1 := testKeystore(t)
	ks2 := testKeystore(t)
	iss := NewIssuer("https://sallyport.test", ks1, time.Hour)
	tok, _, _, _ := iss.IssueAccess(AccessClaims{Subject: "s", Tenant: "t"}, 0)

	if _, err := Parse(tok, ks2, "https://sallyport.test"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, expected ErrInvalid", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	ks := testKeystore(t)
	for _, tok := range []string{"", "x", "a.b.c", "eyJ.eyJ.sig"} {
		if _, err := Parse(tok, ks, ""); !errors.Is(err, ErrInvalid) {
			t.Fatalf("token %q: err = %v, expected ErrInvalid", tok, err)
		}
	}
}
