// Package router arma el árbol de rutas del gateway.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coaching2100/sallyport/internal/authz"
	deployctrl "github.com/coaching2100/sallyport/internal/http/controllers/deploy"
	healthctrl "github.com/coaching2100/sallyport/internal/http/controllers/health"
	oauthctrl "github.com/coaching2100/sallyport/internal/http/controllers/oauth"
	spctrl "github.com/coaching2100/sallyport/internal/http/controllers/sallyport"
	tsctrl "github.com/coaching2100/sallyport/internal/http/controllers/tenantstatus"
	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	mw "github.com/coaching2100/sallyport/internal/http/middlewares"
	"github.com/coaching2100/sallyport/internal/rate"
)

// Deps contiene controllers y middlewares ya construidos.
type Deps struct {
	Auth         *mw.Authenticator
	Token        *oauthctrl.TokenController
	Deploy       *deployctrl.Controller
	Sallyport    *spctrl.Controller
	TenantStatus *tsctrl.Controller
	Health       *healthctrl.Controller
	Metrics      http.Handler

	// Limiters opcionales por endpoint sensible. Nil desactiva.
	TokenLimiter  rate.Limiter
	VerifyLimiter rate.Limiter
}

// New construye el router HTTP completo.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging(routePattern))
	r.Use(mw.WithRecover())

	// Probes y métricas quedan fuera de /api: sin auth, sin rate limit.
	r.Get("/health", d.Health.Live)
	r.Get("/healthz", d.Health.Live)
	r.Get("/readyz", d.Health.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		// Emisión de tokens: pública (la credencial viaja en el body) pero
		// rate-limited por IP.
		api.With(mw.WithRateLimit(d.TokenLimiter, "token", nil)).
			Post("/gcp/token", d.Token.Token)

		// Handshake con el gateway upstream.
		api.With(mw.WithRateLimit(d.VerifyLimiter, "verify", nil)).
			Post("/sallyport/verify", d.Sallyport.Verify)
		api.Post("/sallyport/logout", d.Sallyport.Logout)

		// Endpoints autenticados: el authorization context se construye acá.
		api.Group(func(priv chi.Router) {
			priv.Use(d.Auth.RequireAuth())

			priv.With(mw.RequireCapability(authz.CapDeploy)).
				Post("/deploy-service", d.Deploy.Deploy)

			priv.Get("/tenant/{tenant}/status", d.TenantStatus.Status)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, apperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, apperrors.ErrMethodNotAllowed)
	})

	return r
}

// routePattern etiqueta las métricas con el patrón de ruta (no el path
// crudo, que tiene cardinalidad infinita por los parámetros).
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return ""
}
