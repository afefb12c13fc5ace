// Package tenantstatus - Controller de GET /api/tenant/{tenant}/status.
package tenantstatus

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/coaching2100/sallyport/internal/http/dto/tenantstatus"
	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	svc "github.com/coaching2100/sallyport/internal/http/services/tenantstatus"
	"github.com/coaching2100/sallyport/internal/observability/logger"
)

// Controller expone el status por tenant.
type Controller struct {
	service svc.Service
}

// NewController crea el controller.
func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// Status maneja GET /api/tenant/{tenant}/status.
func (c *Controller) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("tenant.status"))

	tenantID := chi.URLParam(r, "tenant")
	if tenantID == "" {
		apperrors.WriteError(w, apperrors.ErrBadRequest.WithDetail("tenant path parameter is required"))
		return
	}

	st, err := c.service.Status(ctx, tenantID)
	if err != nil {
		if errors.Is(err, svc.ErrUnknownTenant) {
			apperrors.WriteError(w, apperrors.ErrTenantNotFound)
			return
		}
		log.Error("status de tenant fallido", logger.Err(err))
		apperrors.WriteError(w, apperrors.ErrInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.StatusResponse{Status: *st})
}
