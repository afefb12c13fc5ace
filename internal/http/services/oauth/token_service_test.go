package oauth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coaching2100/sallyport/internal/cache"
	jwtx "github.com/coaching2100/sallyport/internal/jwt"
	"github.com/coaching2100/sallyport/internal/security/secrethash"
	"github.com/coaching2100/sallyport/internal/store"
	"github.com/coaching2100/sallyport/internal/tenant"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(_ context.Context, name string) (string, error) {
	return f[name], nil
}

var hashParams = secrethash.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

type fixture struct {
	svc     TokenService
	codes   *CodeStore
	refresh *RefreshStore
	keys    *jwtx.Keystore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	keys, err := jwtx.LoadKeystore(context.Background(),
		fakeSecrets{"K": base64.StdEncoding.EncodeToString(seed)}, "K")
	require.NoError(t, err)

	phc, err := secrethash.Hash(hashParams, "s3cr3t")
	require.NoError(t, err)

	clients := store.NewMemory([]store.Client{
		{
			ClientID:   "mcp-zaxon",
			SecretHash: phc,
			GrantTypes: []string{"client_credentials", "authorization_code", "refresh_token"},
			Scopes:     []string{"deploy", "mcp_access", "basic_profile"},
			Tenant:     "zaxon",
		},
		{
			ClientID:   "solo-m2m",
			SecretHash: phc,
			GrantTypes: []string{"client_credentials"},
			Scopes:     []string{"basic_profile"},
		},
	})

	cc := cache.NewMemory("", time.Minute)
	codes := NewCodeStore(cc, 5*time.Minute)
	refresh := NewRefreshStore(cc, time.Hour)

	registry := tenant.NewRegistry()
	svc := NewTokenService(TokenDeps{
		Clients:  clients,
		Issuer:   jwtx.NewIssuer("https://sallyport.test", keys, time.Hour),
		Registry: registry,
		Codes:    codes,
		Refresh:  refresh,
	})
	return &fixture{svc: svc, codes: codes, refresh: refresh, keys: keys}
}

func TestClientCredentials_Happy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.ExchangeClientCredentials(ctx, ClientCredentialsRequest{
		ClientID:     "mcp-zaxon",
		ClientSecret: "s3cr3t",
		Scope:        "deploy mcp_access",
		TenantID:     "ignorado", // el binding del client manda
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, int64(3600), resp.ExpiresIn)
	require.Equal(t, "zaxon", resp.Tenant)
	require.Equal(t, "deploy mcp_access", resp.Scope)
	require.Empty(t, resp.RefreshToken, "M2M no recibe refresh token")

	claims, err := jwtx.Parse(resp.AccessToken, f.keys, "https://sallyport.test")
	require.NoError(t, err)
	require.Equal(t, "mcp-zaxon", claims["sub"])
	require.Equal(t, "zaxon", claims["tenant"])
	require.Equal(t, "client_credentials", claims["grant_type"])
}

func TestClientCredentials_ScopeDefault(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.ExchangeClientCredentials(context.Background(), ClientCredentialsRequest{
		ClientID:     "mcp-zaxon",
		ClientSecret: "s3cr3t",
	})
	require.NoError(t, err)
	require.Equal(t, "deploy mcp_access basic_profile", resp.Scope)
}

func TestClientCredentials_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ExchangeClientCredentials(ctx, ClientCredentialsRequest{
		ClientID: "mcp-zaxon",
	})
	require.ErrorIs(t, err, ErrTokenInvalidRequest, "sin secret")

	_, err = f.svc.ExchangeClientCredentials(ctx, ClientCredentialsRequest{
		ClientID: "mcp-zaxon", ClientSecret: "equivocado",
	})
	require.ErrorIs(t, err, ErrTokenInvalidClient, "secret incorrecto")

	_, err = f.svc.ExchangeClientCredentials(ctx, ClientCredentialsRequest{
		ClientID: "fantasma", ClientSecret: "s3cr3t",
	})
	require.ErrorIs(t, err, ErrTokenInvalidClient, "client inexistente")

	_, err = f.svc.ExchangeClientCredentials(ctx, ClientCredentialsRequest{
		ClientID: "mcp-zaxon", ClientSecret: "s3cr3t", Scope: "system_admin",
	})
	require.ErrorIs(t, err, ErrTokenInvalidScope, "scope fuera de la lista del client")
}

func TestAuthorizationCode_SingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.codes.Issue(ctx, AuthCodePayload{
		Subject:  "user-7",
		ClientID: "mcp-zaxon",
		TenantID: "zaxon",
		Scope:    "deploy",
	})
	require.NoError(t, err)

	resp, err := f.svc.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code: code, ClientID: "mcp-zaxon",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := jwtx.Parse(resp.AccessToken, f.keys, "https://sallyport.test")
	require.NoError(t, err)
	require.Equal(t, "user-7", claims["sub"])

	// Replay: el mismo código por segunda vez muere con invalid_grant.
	_, err = f.svc.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code: code, ClientID: "mcp-zaxon",
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant)
}

func TestAuthorizationCode_ClientMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.codes.Issue(ctx, AuthCodePayload{
		Subject: "user-7", ClientID: "mcp-zaxon", TenantID: "zaxon", Scope: "deploy",
	})
	require.NoError(t, err)

	// solo-m2m no tiene el grant habilitado.
	_, err = f.svc.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code: code, ClientID: "solo-m2m",
	})
	require.ErrorIs(t, err, ErrTokenUnauthorizedClient)
}

func TestAuthorizationCode_RedirectMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.codes.Issue(ctx, AuthCodePayload{
		Subject: "u", ClientID: "mcp-zaxon", TenantID: "zaxon",
		Scope: "deploy", RedirectURI: "https://app.zaxon.2100.cool/cb",
	})
	require.NoError(t, err)

	_, err = f.svc.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code: code, ClientID: "mcp-zaxon", RedirectURI: "https://otra.parte/cb",
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant)
}

func TestRefresh_RotacionYReuso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.codes.Issue(ctx, AuthCodePayload{
		Subject: "user-7", ClientID: "mcp-zaxon", TenantID: "zaxon", Scope: "deploy",
	})
	require.NoError(t, err)
	first, err := f.svc.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code: code, ClientID: "mcp-zaxon",
	})
	require.NoError(t, err)

	// Rotación: el refresh sirve una vez y entrega uno nuevo.
	second, err := f.svc.ExchangeRefreshToken(ctx, RefreshTokenRequest{
		ClientID: "mcp-zaxon", RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, second.RefreshToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	claims, err := jwtx.Parse(second.AccessToken, f.keys, "https://sallyport.test")
	require.NoError(t, err)
	require.Equal(t, "user-7", claims["sub"], "el subject original se preserva")
	require.Equal(t, "refresh_token", claims["grant_type"])

	// Reuso del token ya rotado: invalid_grant y la familia queda quemada.
	_, err = f.svc.ExchangeRefreshToken(ctx, RefreshTokenRequest{
		ClientID: "mcp-zaxon", RefreshToken: first.RefreshToken,
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant)

	_, err = f.svc.ExchangeRefreshToken(ctx, RefreshTokenRequest{
		ClientID: "mcp-zaxon", RefreshToken: second.RefreshToken,
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant, "la revocación alcanza a toda la familia")
}

func TestRefresh_Desconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ExchangeRefreshToken(context.Background(), RefreshTokenRequest{
		ClientID: "mcp-zaxon", RefreshToken: "nunca-existio",
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant)
}
