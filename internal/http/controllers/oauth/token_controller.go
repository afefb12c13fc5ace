// Package oauth - TokenController atiende POST /api/gcp/token.
package oauth

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/coaching2100/sallyport/internal/audit"
	dto "github.com/coaching2100/sallyport/internal/http/dto/oauth"
	svc "github.com/coaching2100/sallyport/internal/http/services/oauth"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/tenant"
)

// TokenController expone el endpoint de emisión de tokens.
type TokenController struct {
	service svc.TokenService
}

// NewTokenController crea el controller.
func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token maneja POST /api/gcp/token. Acepta JSON (los clientes MCP) y form
// urlencoded (clientes OAuth2 clásicos); ambos con los mismos campos.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	req, ok := c.parseRequest(w, r)
	if !ok {
		return
	}
	log = log.With(logger.GrantType(req.GrantType))

	// El tenant se resuelve ANTES de tocar credenciales: header > body >
	// subdominio > default.
	tenantID := tenant.Resolve(r, req.Tenant)

	var resp *svc.TokenResponse
	var err error
	switch req.GrantType {
	case "client_credentials":
		resp, err = c.service.ExchangeClientCredentials(ctx, svc.ClientCredentialsRequest{
			ClientID:     req.ClientID,
			ClientSecret: req.ClientSecret,
			Scope:        req.Scope,
			TenantID:     tenantID,
		})
	case "authorization_code":
		resp, err = c.service.ExchangeAuthorizationCode(ctx, svc.AuthCodeRequest{
			Code:        req.Code,
			ClientID:    req.ClientID,
			RedirectURI: req.RedirectURI,
			TenantID:    tenantID,
		})
	case "refresh_token":
		resp, err = c.service.ExchangeRefreshToken(ctx, svc.RefreshTokenRequest{
			ClientID:     req.ClientID,
			RefreshToken: req.RefreshToken,
			TenantID:     tenantID,
		})
	case "":
		c.handleServiceError(w, r, svc.ErrTokenInvalidRequest)
		return
	default:
		c.handleServiceError(w, r, svc.ErrTokenUnsupportedGrantType)
		return
	}

	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	log.Info("token emitido", logger.Tenant(resp.Tenant))
	writeTokenResponse(w, resp)
}

// parseRequest deserializa el body según Content-Type.
func (c *TokenController) parseRequest(w http.ResponseWriter, r *http.Request) (*dto.TokenRequest, bool) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "application/json", "":
		var req dto.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
			return nil, false
		}
		trim(&req)
		return &req, true

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
			return nil, false
		}
		req := dto.TokenRequest{
			GrantType:    r.PostForm.Get("grant_type"),
			ClientID:     r.PostForm.Get("client_id"),
			ClientSecret: r.PostForm.Get("client_secret"),
			Scope:        r.PostForm.Get("scope"),
			Code:         r.PostForm.Get("code"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
			RefreshToken: r.PostForm.Get("refresh_token"),
			Tenant:       r.PostForm.Get("tenant"),
		}
		trim(&req)
		return &req, true

	default:
		writeOAuthError(w, http.StatusUnsupportedMediaType, "invalid_request", "Unsupported content type")
		return nil, false
	}
}

func trim(req *dto.TokenRequest) {
	req.GrantType = strings.TrimSpace(req.GrantType)
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.ClientSecret = strings.TrimSpace(req.ClientSecret)
	req.Scope = strings.TrimSpace(req.Scope)
	req.Code = strings.TrimSpace(req.Code)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	req.Tenant = strings.TrimSpace(req.Tenant)
}

func (c *TokenController) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code, description string

	switch err {
	case svc.ErrTokenInvalidRequest:
		status, code, description = http.StatusBadRequest, "invalid_request", "Missing or invalid parameters"
	case svc.ErrTokenInvalidClient:
		w.Header().Set("WWW-Authenticate", `Basic realm="sallyport"`)
		status, code, description = http.StatusUnauthorized, "invalid_client", "Client authentication failed"
	case svc.ErrTokenInvalidGrant:
		status, code, description = http.StatusBadRequest, "invalid_grant", "Invalid, expired or already used grant"
	case svc.ErrTokenUnauthorizedClient:
		status, code, description = http.StatusUnauthorized, "unauthorized_client", "Client not authorized for this grant type"
	case svc.ErrTokenUnsupportedGrantType:
		status, code, description = http.StatusBadRequest, "unsupported_grant_type", "Grant type not supported"
	case svc.ErrTokenInvalidScope:
		status, code, description = http.StatusBadRequest, "invalid_scope", "Requested scope is invalid or not allowed"
	default:
		logger.From(r.Context()).Error("fallo en el endpoint de tokens", logger.Err(err))
		status, code, description = http.StatusInternalServerError, "server_error", "An unexpected error occurred"
	}

	audit.Log(r.Context(), audit.EventTokenRejected,
		logger.Path(r.URL.Path),
		logger.String("reason", code),
	)
	writeOAuthError(w, status, code, description)
}

// writeOAuthError responde el formato de error RFC 6749 con no-store.
func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}

// writeTokenResponse responde el token con headers no-store obligatorios.
func writeTokenResponse(w http.ResponseWriter, resp *svc.TokenResponse) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
