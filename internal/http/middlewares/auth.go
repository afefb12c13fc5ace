package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/coaching2100/sallyport/internal/audit"
	"github.com/coaching2100/sallyport/internal/authz"
	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	"github.com/coaching2100/sallyport/internal/jwt"
	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/session"
	"github.com/coaching2100/sallyport/internal/tenant"
)

// Authenticator valida la credencial portadora de cada request y construye
// el authorization context que consumen los handlers.
type Authenticator struct {
	Keys     *jwt.Keystore
	Issuer   string
	Sessions *session.Store
	Registry *tenant.Registry
}

// RequireAuth exige un bearer token (JWT) o un session id opaco en el header
// Authorization. La progresión de fallos es estricta: credencial ausente,
// luego inválida, luego expirada; solo después se construye el contexto.
func (a *Authenticator) RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				a.reject(w, r, apperrors.ErrTokenMissing, "missing_token")
				return
			}

			var ac *authz.Context
			var appErr *apperrors.AppError
			// Un JWT compacto siempre tiene dos puntos; los session ids
			// opacos nunca. Eso decide la ruta de validación.
			if strings.Count(raw, ".") == 2 {
				ac, appErr = a.fromToken(r, raw)
			} else {
				ac, appErr = a.fromSession(r, raw)
			}
			if appErr != nil {
				reason := appErr.Code
				a.reject(w, r, appErr, reason)
				return
			}

			a.Registry.Touch(ac.TenantID)
			audit.Log(r.Context(), audit.EventAuthGranted,
				logger.Subject(ac.UserID),
				logger.Tenant(ac.TenantID),
				logger.GrantType(ac.GrantType),
			)
			next.ServeHTTP(w, r.WithContext(withAuthContext(r.Context(), ac)))
		})
	}
}

// fromToken valida el JWT y deriva el contexto de sus claims.
func (a *Authenticator) fromToken(r *http.Request, raw string) (*authz.Context, *apperrors.AppError) {
	claims, err := jwt.Parse(raw, a.Keys, a.Issuer)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrExpired):
		return nil, apperrors.ErrTokenExpired
	default:
		return nil, apperrors.ErrTokenInvalid.WithCause(err)
	}

	sub, _ := claims["sub"].(string)
	scope, _ := claims["scope"].(string)
	grantType, _ := claims["grant_type"].(string)
	tenantID, _ := claims["tenant"].(string)
	if sub == "" || tenantID == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	var roles []string
	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, rr := range rawRoles {
			if s, ok := rr.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	t := a.Registry.GetOrDefault(tenantID)
	return authz.Build(authz.Input{
		Subject:   sub,
		Scope:     scope,
		Roles:     roles,
		GrantType: grantType,
	}, t, a.Registry.LimitsFor(t)), nil
}

// fromSession resuelve el session id opaco contra el session store.
func (a *Authenticator) fromSession(r *http.Request, id string) (*authz.Context, *apperrors.AppError) {
	if a.Sessions == nil {
		return nil, apperrors.ErrTokenInvalid
	}
	sess, err := a.Sessions.Get(r.Context(), id)
	if err != nil {
		return nil, apperrors.ErrInternal.WithCause(err)
	}
	if sess == nil {
		return nil, apperrors.ErrSessionExpired
	}

	t := a.Registry.GetOrDefault(sess.TenantID)
	return authz.Build(authz.Input{
		Subject:   sess.UserUUID,
		Roles:     sess.Permissions,
		GrantType: "session",
		SessionID: sess.SessionID,
	}, t, a.Registry.LimitsFor(t)), nil
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError, reason string) {
	audit.Log(r.Context(), audit.EventAuthDenied,
		logger.Path(r.URL.Path),
		logger.String("reason", reason),
	)
	metrics.AuthFailure(reason)
	w.Header().Set("WWW-Authenticate", `Bearer realm="sallyport"`)
	apperrors.WriteError(w, appErr)
}

// RequireCapability corta con 403 si el contexto no porta la capability.
// Debe montarse después de RequireAuth.
func RequireCapability(cap authz.Capability) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := GetAuthContext(r)
			if ac == nil {
				apperrors.WriteError(w, apperrors.ErrTokenMissing)
				return
			}
			if !ac.HasCapability(cap) {
				metrics.AuthFailure("insufficient_scope")
				apperrors.WriteError(w, apperrors.ErrForbidden.WithDetail(string(cap)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearer extrae la credencial del header Authorization.
func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
