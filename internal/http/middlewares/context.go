package middlewares

import (
	"context"
	"net/http"

	"github.com/coaching2100/sallyport/internal/authz"
)

type ctxKey string

const (
	ctxKeyAuth      ctxKey = "sallyport.auth"
	ctxKeyRequestID ctxKey = "sallyport.request_id"
)

// withAuthContext cuelga el contexto de autorización en la request.
func withAuthContext(ctx context.Context, ac *authz.Context) context.Context {
	return context.WithValue(ctx, ctxKeyAuth, ac)
}

// GetAuthContext devuelve el contexto de autorización construido por
// RequireAuth, o nil si la request no pasó por el middleware.
func GetAuthContext(r *http.Request) *authz.Context {
	ac, _ := r.Context().Value(ctxKeyAuth).(*authz.Context)
	return ac
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// GetRequestID devuelve el identificador de la request, o cadena vacía.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
