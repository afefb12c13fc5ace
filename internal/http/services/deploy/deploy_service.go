// Package deploy dispara el aprovisionamiento de servicios por tenant.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coaching2100/sallyport/internal/audit"
	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/tenant"
)

// Service encola deployments. El aprovisionamiento real corre async en la
// infraestructura; acá solo se valida, registra y acusa recibo (202).
type Service interface {
	Trigger(ctx context.Context, req Request) (*Deployment, error)
}

// Request describe el deployment pedido. ServiceName es obligatorio; el
// resto tiene defaults.
type Request struct {
	TenantID    string
	ServiceName string
	ServiceType string
	Region      string
	Config      map[string]string
	RequestedBy string // subject del authorization context
}

// Deployment es el acuse del deployment encolado.
type Deployment struct {
	DeploymentID        string            `json:"deployment_id"`
	Tenant              string            `json:"tenant"`
	ServiceName         string            `json:"service_name"`
	ServiceType         string            `json:"service_type"`
	Region              string            `json:"region"`
	Status              string            `json:"status"`
	Endpoints           Endpoints         `json:"endpoints"`
	Config              map[string]string `json:"config,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	EstimatedCompletion time.Time         `json:"estimated_completion"`
}

// Endpoints son las URLs que quedarán activas al completar el deployment.
type Endpoints struct {
	Primary string `json:"primary"`
	Health  string `json:"health"`
}

// Errores del trigger.
var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrQuotaExceeded  = errors.New("quota_exceeded")
)

// Deps contiene las dependencias del service.
type Deps struct {
	Registry           *tenant.Registry
	DomainSuffix       string // p.ej. "2100.cool"
	DefaultRegion      string
	DefaultServiceType string
}

type deployService struct {
	registry       *tenant.Registry
	domainSuffix   string
	defaultRegion  string
	defaultService string
}

// NewService crea el deploy service.
func NewService(d Deps) Service {
	if d.DomainSuffix == "" {
		d.DomainSuffix = "2100.cool"
	}
	if d.DefaultRegion == "" {
		d.DefaultRegion = "us-west1"
	}
	if d.DefaultServiceType == "" {
		d.DefaultServiceType = "mcp-client"
	}
	return &deployService{
		registry:       d.Registry,
		domainSuffix:   d.DomainSuffix,
		defaultRegion:  d.DefaultRegion,
		defaultService: d.DefaultServiceType,
	}
}

func (s *deployService) Trigger(ctx context.Context, req Request) (*Deployment, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("deploy.trigger"))

	if req.TenantID == "" {
		return nil, ErrInvalidRequest
	}
	if strings.TrimSpace(req.ServiceName) == "" {
		return nil, ErrInvalidRequest
	}
	req.ServiceName = strings.TrimSpace(req.ServiceName)
	if req.ServiceType == "" {
		req.ServiceType = s.defaultService
	}
	if req.Region == "" {
		req.Region = s.defaultRegion
	}

	t := s.registry.GetOrDefault(req.TenantID)
	limits := s.registry.LimitsFor(t)
	// Tope de servicios por tier. -1 = ilimitado (diamond).
	if limits.MaxServices >= 0 && len(t.Services) >= limits.MaxServices {
		log.Warn("cuota de servicios agotada",
			logger.Tenant(t.ID),
			logger.Int("max_services", limits.MaxServices),
		)
		return nil, ErrQuotaExceeded
	}

	now := time.Now().UTC()
	dep := &Deployment{
		DeploymentID: "deploy-" + uuid.NewString(),
		Tenant:       t.ID,
		ServiceName:  req.ServiceName,
		ServiceType:  req.ServiceType,
		Region:       req.Region,
		Status:       "initiated",
		Endpoints: Endpoints{
			Primary: fmt.Sprintf("https://%s.%s.%s", req.ServiceName, t.ID, s.domainSuffix),
			Health:  fmt.Sprintf("https://%s.%s.%s/health", req.ServiceName, t.ID, s.domainSuffix),
		},
		Config:              req.Config,
		CreatedAt:           now,
		EstimatedCompletion: now.Add(5 * time.Minute),
	}

	s.registry.Touch(t.ID)
	metrics.DeployTriggered(t.ID)
	audit.Log(ctx, audit.EventDeployRequested,
		logger.Subject(req.RequestedBy),
		logger.Tenant(t.ID),
		logger.DeploymentID(dep.DeploymentID),
		logger.String("service_name", req.ServiceName),
		logger.String("service_type", req.ServiceType),
		logger.String("region", req.Region),
	)
	log.Info("deployment encolado",
		logger.Tenant(t.ID),
		logger.DeploymentID(dep.DeploymentID),
	)

	return dep, nil
}
