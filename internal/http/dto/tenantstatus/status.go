package tenantstatus

import svc "github.com/coaching2100/sallyport/internal/http/services/tenantstatus"

// StatusResponse es la respuesta plana de GET /api/tenant/{tenant}/status.
// El embedding aplana los campos del snapshot en el JSON.
type StatusResponse struct {
	svc.Status
}
