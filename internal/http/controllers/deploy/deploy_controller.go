// Package deploy - Controller atiende POST /api/deploy-service.
package deploy

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/coaching2100/sallyport/internal/http/dto/deploy"
	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	"github.com/coaching2100/sallyport/internal/http/middlewares"
	svc "github.com/coaching2100/sallyport/internal/http/services/deploy"
	"github.com/coaching2100/sallyport/internal/observability/logger"
)

// Controller expone el trigger de deployments.
type Controller struct {
	service svc.Service
}

// NewController crea el controller.
func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// Deploy maneja POST /api/deploy-service. Requiere contexto autenticado con
// la capability de deploy (lo garantiza el router); el tenant del deployment
// es SIEMPRE el del contexto, nunca el del body.
func (c *Controller) Deploy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("deploy"))

	ac := middlewares.GetAuthContext(r)
	if ac == nil {
		apperrors.WriteError(w, apperrors.ErrTokenMissing)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 256<<10)
	var req dto.DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.ErrInvalidJSON.WithCause(err))
		return
	}

	dep, err := c.service.Trigger(ctx, svc.Request{
		TenantID:    ac.TenantID,
		ServiceName: req.ServiceName,
		ServiceType: req.ServiceType,
		Region:      req.Region,
		Config:      req.Config,
		RequestedBy: ac.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidRequest):
			apperrors.WriteError(w, apperrors.ErrBadRequest.WithDetail("service_name is required"))
		case errors.Is(err, svc.ErrQuotaExceeded):
			apperrors.WriteError(w, apperrors.ErrForbidden.WithDetail("service quota exceeded for tier"))
		default:
			log.Error("trigger de deployment fallido", logger.Err(err))
			apperrors.WriteError(w, apperrors.ErrDeploymentFailed.WithCause(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(dto.DeployResponse{
		Success:    true,
		Deployment: dep,
	})
}
