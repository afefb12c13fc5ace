package deploy

import svc "github.com/coaching2100/sallyport/internal/http/services/deploy"

// DeployRequest es el body de POST /api/deploy-service.
type DeployRequest struct {
	ServiceName string            `json:"service_name"`
	ServiceType string            `json:"service_type,omitempty"`
	Region      string            `json:"region,omitempty"`
	Config      map[string]string `json:"config,omitempty"`
	// Tenant opcional en el body; el contexto de autorización manda.
	Tenant string `json:"tenant,omitempty"`
}

// DeployResponse es el acuse 202 del deployment encolado.
type DeployResponse struct {
	Success    bool            `json:"success"`
	Deployment *svc.Deployment `json:"deployment"`
}
