package middlewares

import (
	"net/http"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// WithRequestID garantiza que toda request lleve un identificador único.
// Si el cliente ya envía uno, se respeta; si no, se genera un UUID v4.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)
			next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
		})
	}
}
