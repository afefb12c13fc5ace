package middlewares

import (
	"net/http"
	"time"

	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/observability/logger"
)

// statusRecorder captura el código de estado escrito por el handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// WithLogging registra cada request con un logger con ámbito (request id)
// y alimenta las métricas HTTP. El logger queda disponible en el contexto
// para las capas inferiores vía logger.From.
func WithLogging(route func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			scoped := logger.L().With(
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			r = r.WithContext(logger.ToContext(r.Context(), scoped))

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			elapsed := time.Since(start)

			pattern := r.URL.Path
			if route != nil {
				if p := route(r); p != "" {
					pattern = p
				}
			}
			metrics.ObserveRequest(r.Method, pattern, rec.status, elapsed)

			scoped.Info("http request",
				logger.Status(rec.status),
				logger.DurationMs(elapsed.Milliseconds()),
				logger.Bytes(rec.bytes),
			)
		})
	}
}
