// Package sallyport contiene los services de verificación de identidad del
// gateway: el handshake con la capa SallyPort upstream y el ciclo de vida
// de las sesiones que nacen de él.
package sallyport

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/coaching2100/sallyport/internal/audit"
	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/secrets"
	"github.com/coaching2100/sallyport/internal/session"
	"github.com/coaching2100/sallyport/internal/tenant"
)

// VerifyService valida el gateway token de SallyPort y materializa sesiones.
type VerifyService interface {
	// Verify comprueba el auth token del gateway y crea una sesión para el
	// usuario verificado.
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)

	// Logout invalida la sesión indicada. Idempotente.
	Logout(ctx context.Context, sessionID string) error
}

// VerifyRequest es lo que el gateway upstream envía tras autenticar al
// usuario en su propio dominio.
type VerifyRequest struct {
	AuthToken   string   // shared secret del gateway
	UserUUID    string
	TenantID    string
	Permissions []string // grupos SAO del usuario
}

// VerifyResult es la sesión creada.
type VerifyResult struct {
	SessionID string
	TenantID  string
	ExpiresAt time.Time
}

// Errores del handshake.
var (
	ErrVerifyInvalidRequest = errors.New("invalid_request")
	ErrVerifyDenied         = errors.New("verification_denied")
	ErrVerifyUnavailable    = errors.New("server_error")
)

// VerifyDeps contiene las dependencias del service.
type VerifyDeps struct {
	Secrets          secrets.Provider
	GatewayKeySecret string // nombre del secreto con el shared key
	Sessions         *session.Store
	Registry         *tenant.Registry
}

type verifyService struct {
	secrets   secrets.Provider
	keySecret string
	sessions  *session.Store
	registry  *tenant.Registry
}

// NewVerifyService crea el service. El gateway key vive SOLO en el secrets
// provider; si no está provisionado toda verificación falla cerrada.
func NewVerifyService(d VerifyDeps) VerifyService {
	return &verifyService{
		secrets:   d.Secrets,
		keySecret: d.GatewayKeySecret,
		sessions:  d.Sessions,
		registry:  d.Registry,
	}
}

func (s *verifyService) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("sallyport.verify"))

	if req.AuthToken == "" || req.UserUUID == "" {
		return nil, ErrVerifyInvalidRequest
	}

	key, err := s.secrets.GetSecret(ctx, s.keySecret)
	if err != nil {
		// Fail closed: sin key provisionada nadie entra.
		log.Error("gateway key no disponible", logger.Err(err))
		return nil, ErrVerifyUnavailable
	}
	if subtle.ConstantTimeCompare([]byte(req.AuthToken), []byte(key)) != 1 {
		log.Warn("gateway token rechazado", logger.Subject(req.UserUUID))
		metrics.AuthFailure("gateway_token")
		return nil, ErrVerifyDenied
	}

	t := s.registry.GetOrDefault(req.TenantID)
	sess, err := s.sessions.Create(ctx, req.UserUUID, t.ID, req.Permissions)
	if err != nil {
		log.Error("creación de sesión fallida", logger.Err(err))
		return nil, ErrVerifyUnavailable
	}

	s.registry.Touch(t.ID)
	audit.Log(ctx, audit.EventSessionCreated,
		logger.Subject(req.UserUUID),
		logger.Tenant(t.ID),
		logger.SessionID(sess.SessionID),
	)

	return &VerifyResult{
		SessionID: sess.SessionID,
		TenantID:  t.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (s *verifyService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrVerifyInvalidRequest
	}
	if err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		return ErrVerifyUnavailable
	}
	audit.Log(ctx, audit.EventSessionRevoked, logger.SessionID(sessionID))
	return nil
}
