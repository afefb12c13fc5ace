package middlewares

import (
	"net/http"
	"runtime/debug"

	apperrors "github.com/coaching2100/sallyport/internal/http/errors"
	"github.com/coaching2100/sallyport/internal/observability/logger"
)

// WithRecover convierte un panic del handler en un 500 controlado.
// Nunca deja caer el proceso por una request.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recuperado",
						logger.Any("panic", rec),
						logger.String("stack", string(debug.Stack())),
					)
					apperrors.WriteError(w, apperrors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
