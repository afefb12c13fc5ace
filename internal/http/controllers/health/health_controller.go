// Package health contiene los probes de liveness y readiness.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coaching2100/sallyport/internal/cache"
	"github.com/coaching2100/sallyport/internal/store"
)

// Controller responde los probes de Cloud Run.
type Controller struct {
	cache   cache.Client
	clients store.CredentialStore
	version string
}

// NewController crea el controller. cache y clients pueden ser nil en
// configuraciones parciales; los probes degradan a reportar solo el proceso.
func NewController(c cache.Client, s store.CredentialStore, version string) *Controller {
	return &Controller{cache: c, clients: s, version: version}
}

// Live maneja GET /healthz: el proceso responde.
func (c *Controller) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": c.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready maneja GET /readyz: verifica las dependencias con timeout corto.
// Cualquier dependencia caída degrada a 503 para que el balanceador saque la
// instancia de rotación.
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}
	if c.clients != nil {
		if err := c.clients.Ping(ctx); err != nil {
			checks["credential_store"] = err.Error()
			healthy = false
		} else {
			checks["credential_store"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": state,
		"checks": checks,
	})
}
