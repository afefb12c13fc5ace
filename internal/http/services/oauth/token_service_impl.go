package oauth

import (
	"context"
	"errors"
	"strings"

	"github.com/coaching2100/sallyport/internal/audit"
	jwtx "github.com/coaching2100/sallyport/internal/jwt"
	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/security/secrethash"
	"github.com/coaching2100/sallyport/internal/store"
	"github.com/coaching2100/sallyport/internal/tenant"
	"github.com/coaching2100/sallyport/internal/validation"
)

// TokenDeps contiene las dependencias del token service.
type TokenDeps struct {
	Clients  store.CredentialStore
	Issuer   *jwtx.Issuer
	Registry *tenant.Registry
	Codes    *CodeStore
	Refresh  *RefreshStore
	Audience string // aud de los access tokens emitidos
}

type tokenService struct {
	clients  store.CredentialStore
	issuer   *jwtx.Issuer
	registry *tenant.Registry
	codes    *CodeStore
	refresh  *RefreshStore
	audience string
}

// NewTokenService crea el TokenService.
func NewTokenService(d TokenDeps) TokenService {
	aud := d.Audience
	if aud == "" {
		aud = "sallyport"
	}
	return &tokenService{
		clients:  d.Clients,
		issuer:   d.Issuer,
		registry: d.Registry,
		codes:    d.Codes,
		refresh:  d.Refresh,
		audience: aud,
	}
}

// ExchangeClientCredentials maneja grant_type=client_credentials (M2M).
func (s *tokenService) ExchangeClientCredentials(ctx context.Context, req ClientCredentialsRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.client_credentials"))

	if req.ClientID == "" || req.ClientSecret == "" {
		return nil, ErrTokenInvalidRequest
	}
	if !validation.ValidClientID(req.ClientID) {
		return nil, ErrTokenInvalidClient
	}

	client, err := s.authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		log.Warn("autenticación de client fallida", logger.ClientID(req.ClientID))
		metrics.AuthFailure("invalid_client")
		return nil, err
	}
	if !client.GrantAllowed("client_credentials") {
		return nil, ErrTokenUnauthorizedClient
	}

	scope, err := s.resolveScope(req.Scope, client)
	if err != nil {
		return nil, err
	}

	t, tenantID := s.resolveTenant(client, req.TenantID)
	return s.issue(ctx, issueInput{
		subject:   client.ClientID,
		clientID:  client.ClientID,
		tenantID:  tenantID,
		tenant:    t,
		scope:     scope,
		grantType: "client_credentials",
		// M2M no recibe refresh token: el client puede volver a autenticarse.
		withRefresh: false,
	})
}

// ExchangeAuthorizationCode maneja grant_type=authorization_code. El código
// es de un solo uso: el segundo intercambio del mismo código falla con
// invalid_grant aunque llegue en paralelo.
func (s *tokenService) ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.authorization_code"))

	if req.Code == "" || req.ClientID == "" {
		return nil, ErrTokenInvalidRequest
	}

	client, err := s.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenInvalidClient
		}
		log.Error("credential store no disponible", logger.Err(err))
		return nil, ErrTokenServerError
	}
	if !client.GrantAllowed("authorization_code") {
		return nil, ErrTokenUnauthorizedClient
	}

	payload, err := s.codes.Consume(ctx, req.Code)
	if err != nil {
		log.Error("consumo de authorization code fallido", logger.Err(err))
		return nil, ErrTokenServerError
	}
	if payload == nil {
		log.Warn("authorization code inexistente, expirado o ya usado")
		return nil, ErrTokenInvalidGrant
	}
	if payload.ClientID != client.ClientID {
		return nil, ErrTokenInvalidGrant
	}
	if payload.RedirectURI != "" && payload.RedirectURI != req.RedirectURI {
		return nil, ErrTokenInvalidGrant
	}

	t, tenantID := s.resolveTenant(client, payload.TenantID)
	return s.issue(ctx, issueInput{
		subject:     payload.Subject,
		clientID:    client.ClientID,
		tenantID:    tenantID,
		tenant:      t,
		scope:       payload.Scope,
		grantType:   "authorization_code",
		withRefresh: true,
	})
}

// ExchangeRefreshToken maneja grant_type=refresh_token con rotación: cada
// refresh token sirve una sola vez y el reuso revoca la familia entera.
func (s *tokenService) ExchangeRefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.refresh"))

	if req.ClientID == "" || req.RefreshToken == "" {
		return nil, ErrTokenInvalidRequest
	}

	client, err := s.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenInvalidClient
		}
		log.Error("credential store no disponible", logger.Err(err))
		return nil, ErrTokenServerError
	}
	if !client.GrantAllowed("refresh_token") {
		return nil, ErrTokenUnauthorizedClient
	}

	payload, err := s.refresh.Consume(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenInvalidGrant) {
			log.Warn("refresh token inválido o reusado", logger.ClientID(req.ClientID))
			metrics.AuthFailure("refresh_reuse")
			return nil, ErrTokenInvalidGrant
		}
		log.Error("consumo de refresh token fallido", logger.Err(err))
		return nil, ErrTokenServerError
	}
	if payload.ClientID != client.ClientID {
		return nil, ErrTokenInvalidGrant
	}

	t, tenantID := s.resolveTenant(client, payload.TenantID)
	return s.issue(ctx, issueInput{
		subject:     payload.Subject,
		clientID:    client.ClientID,
		tenantID:    tenantID,
		tenant:      t,
		scope:       payload.Scope,
		grantType:   "refresh_token",
		withRefresh: true,
		familyID:    payload.FamilyID,
	})
}

// ------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------

// authenticate valida client_id + client_secret contra el credential store.
// La comparación del hash es constant-time (argon2id PHC).
func (s *tokenService) authenticate(ctx context.Context, clientID, secret string) (*store.Client, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenInvalidClient
		}
		return nil, ErrTokenServerError
	}
	if client.SecretHash == "" || !secrethash.Verify(secret, client.SecretHash) {
		return nil, ErrTokenInvalidClient
	}
	return client, nil
}

// resolveScope valida el scope pedido contra la lista del client. Sin scope
// pedido se otorga todo lo registrado para el client.
func (s *tokenService) resolveScope(requested string, client *store.Client) (string, error) {
	if requested == "" {
		return strings.Join(client.Scopes, " "), nil
	}
	fields := strings.Fields(requested)
	for _, sc := range fields {
		if !validation.ValidScopeName(sc) || !client.ScopeAllowed(sc) {
			return "", ErrTokenInvalidScope
		}
	}
	return strings.Join(fields, " "), nil
}

// resolveTenant decide el tenant efectivo del token: el binding del client
// manda; si el client es multi-tenant se usa el resuelto de la request.
func (s *tokenService) resolveTenant(client *store.Client, resolved string) (*tenant.Tenant, string) {
	id := client.Tenant
	if id == "" {
		id = resolved
	}
	if id == "" {
		id = tenant.Default
	}
	t := s.registry.GetOrDefault(id)
	return t, t.ID
}

type issueInput struct {
	subject     string
	clientID    string
	tenantID    string
	tenant      *tenant.Tenant
	scope       string
	grantType   string
	withRefresh bool
	familyID    string
}

// issue firma el access token (y opcionalmente rota/crea el refresh token)
// y arma la respuesta. expires_in sale del par iat/exp emitido, nunca se
// recalcula contra otro reloj.
func (s *tokenService) issue(ctx context.Context, in issueInput) (*TokenResponse, error) {
	log := logger.From(ctx)

	ttl := in.tenant.AccessTokenTTL() // 0 => default del issuer
	access, iat, exp, err := s.issuer.IssueAccess(jwtx.AccessClaims{
		Subject:   in.subject,
		Audience:  s.audience,
		Tenant:    in.tenantID,
		Scope:     in.scope,
		GrantType: in.grantType,
	}, ttl)
	if err != nil {
		log.Error("firma de access token fallida", logger.Err(err))
		return nil, ErrTokenServerError
	}

	var rawRefresh string
	if in.withRefresh && s.refresh != nil {
		rawRefresh, err = s.refresh.Issue(ctx, RefreshPayload{
			Subject:  in.subject,
			ClientID: in.clientID,
			TenantID: in.tenantID,
			Scope:    in.scope,
			FamilyID: in.familyID,
		})
		if err != nil {
			log.Error("emisión de refresh token fallida", logger.Err(err))
			return nil, ErrTokenServerError
		}
	}

	s.registry.Touch(in.tenantID)
	metrics.TokenIssued(in.grantType, in.tenantID)
	audit.Log(ctx, audit.EventTokenIssued,
		logger.Subject(in.subject),
		logger.Tenant(in.tenantID),
		logger.GrantType(in.grantType),
	)

	return &TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(exp.Sub(iat).Seconds()),
		RefreshToken: rawRefresh,
		Scope:        in.scope,
		Tenant:       in.tenantID,
	}, nil
}
