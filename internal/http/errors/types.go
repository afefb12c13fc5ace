package errors

import (
	"fmt"
	"net/http"
)

// AppError es la estructura estándar de errores del gateway para endpoints
// no-OAuth (los endpoints OAuth2 responden el formato RFC 6749 desde el
// controller).
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail retorna una COPIA con detalle adicional; no muta los errores
// base globales.
func (e *AppError) WithDetail(detail string) *AppError {
	n := *e
	n.Detail = detail
	return &n
}

// WithCause retorna una copia con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	n := *e
	n.Err = err
	return &n
}

// FromError convierte cualquier error en AppError, degradando a error
// interno genérico si no lo es.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// Catálogo de errores del gateway.
var (
	ErrBadRequest = &AppError{
		Code:       "invalid_request",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidJSON = &AppError{
		Code:       "invalid_request",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrTokenMissing = &AppError{
		Code:       "invalid_token",
		Message:    "No se proporcionó token de autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenInvalid = &AppError{
		Code:       "invalid_token",
		Message:    "El token de acceso es inválido o está malformado.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenExpired = &AppError{
		Code:       "token_expired",
		Message:    "El token de acceso ha expirado.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrSessionExpired = &AppError{
		Code:       "session_expired",
		Message:    "La sesión ha expirado.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrForbidden = &AppError{
		Code:       "insufficient_scope",
		Message:    "No tiene permisos para realizar esta acción.",
		HTTPStatus: http.StatusForbidden,
	}
	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code:       "method_not_allowed",
		Message:    "El método HTTP no está permitido para esta ruta.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
	ErrTenantNotFound = &AppError{
		Code:       "tenant_not_found",
		Message:    "El tenant especificado no existe.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrRateLimited = &AppError{
		Code:       "rate_limit_exceeded",
		Message:    "Excedió el límite de solicitudes. Intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}
	ErrInternal = &AppError{
		Code:       "server_error",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrDeploymentFailed = &AppError{
		Code:       "deployment_failed",
		Message:    "No se pudo iniciar el deployment.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
