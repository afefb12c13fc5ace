package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/rate"
)

// WithRateLimit aplica el limitador de ventana fija por llave cliente.
// keyFn deriva la llave de la request (IP, client_id, etc.); endpoint
// etiqueta la métrica. Limiter nil desactiva el middleware.
func WithRateLimit(limiter rate.Limiter, endpoint string, keyFn func(*http.Request) string) Middleware {
	if keyFn == nil {
		keyFn = ClientIP
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := endpoint + ":" + keyFn(r)
			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// El limitador caído no debe tumbar el servicio: se log y
				// se deja pasar (fail-open solo para el rate limit).
				logger.From(r.Context()).Warn("rate limiter no disponible", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				metrics.RateLimited(endpoint)
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				apperrors.WriteError(w, apperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extrae la IP del cliente, honrando X-Forwarded-For si existe
// (el gateway corre detrás del balanceador de Cloud Run).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
