// Package oauth contiene los services del endpoint de tokens del gateway.
package oauth

import (
	"context"
	"errors"
	"time"
)

// TokenService implementa la lógica del endpoint POST /api/gcp/token.
type TokenService interface {
	// ExchangeClientCredentials maneja grant_type=client_credentials (M2M).
	ExchangeClientCredentials(ctx context.Context, req ClientCredentialsRequest) (*TokenResponse, error)

	// ExchangeAuthorizationCode maneja grant_type=authorization_code.
	ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*TokenResponse, error)

	// ExchangeRefreshToken maneja grant_type=refresh_token (rotación single-use).
	ExchangeRefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
}

// ClientCredentialsRequest son los parámetros del grant client_credentials.
type ClientCredentialsRequest struct {
	ClientID     string
	ClientSecret string
	Scope        string
	TenantID     string // resuelto por el middleware/controller
}

// AuthCodeRequest son los parámetros del grant authorization_code.
type AuthCodeRequest struct {
	Code        string
	ClientID    string
	RedirectURI string
	TenantID    string
}

// RefreshTokenRequest son los parámetros del grant refresh_token.
type RefreshTokenRequest struct {
	ClientID     string
	RefreshToken string
	TenantID     string
}

// TokenResponse es la respuesta estándar del endpoint de tokens. El campo
// tenant viaja explícito para que los clientes MCP sepan contra qué tenant
// quedó emitido el token.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	Tenant       string `json:"tenant"`
}

// Errores del endpoint de tokens (códigos OAuth2 estándar).
var (
	ErrTokenInvalidRequest       = errors.New("invalid_request")
	ErrTokenInvalidClient        = errors.New("invalid_client")
	ErrTokenInvalidGrant         = errors.New("invalid_grant")
	ErrTokenUnauthorizedClient   = errors.New("unauthorized_client")
	ErrTokenUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrTokenInvalidScope         = errors.New("invalid_scope")
	ErrTokenServerError          = errors.New("server_error")
)

// AuthCodePayload es el estado asociado a un authorization code pendiente.
type AuthCodePayload struct {
	Subject     string    `json:"subject"`
	ClientID    string    `json:"client_id"`
	TenantID    string    `json:"tenant_id"`
	RedirectURI string    `json:"redirect_uri,omitempty"`
	Scope       string    `json:"scope"`
	Roles       []string  `json:"roles,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RefreshPayload es el estado de un refresh token vivo. FamilyID agrupa toda
// la cadena de rotaciones que nació del mismo grant.
type RefreshPayload struct {
	Subject   string    `json:"subject"`
	ClientID  string    `json:"client_id"`
	TenantID  string    `json:"tenant_id"`
	Scope     string    `json:"scope"`
	FamilyID  string    `json:"family_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
