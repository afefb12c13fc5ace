// Package sallyport - Controller del handshake con el gateway upstream.
package sallyport

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/coaching2100/sallyport/internal/http/dto/sallyport"
	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	svc "github.com/coaching2100/sallyport/internal/http/services/sallyport"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/tenant"
	"github.com/coaching2100/sallyport/internal/util"
)

// Controller expone verify y logout.
type Controller struct {
	service svc.VerifyService
}

// NewController crea el controller.
func NewController(s svc.VerifyService) *Controller {
	return &Controller{service: s}
}

// Verify maneja POST /api/sallyport/verify.
func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("sallyport.verify"))

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req dto.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.ErrInvalidJSON.WithCause(err))
		return
	}

	res, err := c.service.Verify(ctx, svc.VerifyRequest{
		AuthToken:   req.AuthToken,
		UserUUID:    req.UserUUID,
		TenantID:    tenant.Resolve(r, req.Tenant),
		Permissions: req.Permissions,
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrVerifyInvalidRequest):
			apperrors.WriteError(w, apperrors.ErrBadRequest)
		case errors.Is(err, svc.ErrVerifyDenied):
			apperrors.WriteError(w, apperrors.ErrTokenInvalid)
		default:
			log.Error("verificación fallida", logger.Err(err))
			apperrors.WriteError(w, apperrors.ErrInternal)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.VerifyResponse{
		Success:   true,
		SessionID: res.SessionID,
		Tenant:    res.TenantID,
		ExpiresAt: res.ExpiresAt,
	})
}

// Logout maneja POST /api/sallyport/logout. Idempotente: hacer logout de una
// sesión inexistente también responde success.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("sallyport.logout"))

	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)
	var req dto.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.ErrInvalidJSON.WithCause(err))
		return
	}

	if err := c.service.Logout(ctx, req.SessionID); err != nil {
		switch {
		case errors.Is(err, svc.ErrVerifyInvalidRequest):
			apperrors.WriteError(w, apperrors.ErrBadRequest)
		default:
			log.Error("logout fallido", logger.Err(err))
			apperrors.WriteError(w, apperrors.ErrInternal)
		}
		return
	}

	log.Info("sesión invalidada", logger.String("session", util.Mask(req.SessionID)))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.LogoutResponse{Success: true})
}
