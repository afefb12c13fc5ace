// Package metrics expone los contadores Prometheus del gateway.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	tokensIssuedTotal *prometheus.CounterVec
	authFailuresTotal *prometheus.CounterVec
	deploysTotal      *prometheus.CounterVec
	rateLimitedTotal  *prometheus.CounterVec
)

// Register inicializa las métricas contra el registry dado (nil => default)
// y retorna el handler para /metrics. Idempotente.
func Register(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sallyport_http_requests_total",
			Help: "Requests HTTP procesados",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sallyport_http_request_duration_seconds",
			Help:    "Latencia de requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sallyport_tokens_issued_total",
			Help: "Access tokens emitidos",
		}, []string{"grant_type", "tenant"})

		authFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sallyport_auth_failures_total",
			Help: "Rechazos de autenticación por motivo",
		}, []string{"reason"})

		deploysTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sallyport_deployments_triggered_total",
			Help: "Deployments aceptados por tenant",
		}, []string{"tenant"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sallyport_rate_limited_total",
			Help: "Requests rechazados por rate limit",
		}, []string{"endpoint"})

		reg.MustRegister(httpRequestsTotal, httpRequestDuration,
			tokensIssuedTotal, authFailuresTotal, deploysTotal, rateLimitedTotal)
	})
	return promhttp.Handler()
}

// ObserveRequest registra un request terminado.
func ObserveRequest(method, path string, status int, dur time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(dur.Seconds())
}

// TokenIssued registra un token emitido.
func TokenIssued(grantType, tenant string) {
	if tokensIssuedTotal != nil {
		tokensIssuedTotal.WithLabelValues(grantType, tenant).Inc()
	}
}

// AuthFailure registra un rechazo con su motivo (no_token, invalid_token,
// token_expired, invalid_client, invalid_grant...).
func AuthFailure(reason string) {
	if authFailuresTotal != nil {
		authFailuresTotal.WithLabelValues(reason).Inc()
	}
}

// DeployTriggered registra un deployment aceptado.
func DeployTriggered(tenant string) {
	if deploysTotal != nil {
		deploysTotal.WithLabelValues(tenant).Inc()
	}
}

// RateLimited registra un request frenado por el limiter.
func RateLimited(endpoint string) {
	if rateLimitedTotal != nil {
		rateLimitedTotal.WithLabelValues(endpoint).Inc()
	}
}
