package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse controla exactamente qué campos ve el cliente. Nunca se
// serializa la causa (Err): sin stack traces ni secretos en respuestas.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Detail      string `json:"detail,omitempty"`
}

// WriteError escribe la respuesta HTTP para un error. Acepta *AppError o
// cualquier error (degradado a server_error).
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:       appErr.Code,
		Description: appErr.Message,
		Detail:      appErr.Detail,
	})
}
