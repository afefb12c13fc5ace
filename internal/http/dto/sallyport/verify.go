package sallyport

import "time"

// VerifyRequest es el body de POST /api/sallyport/verify: el gateway
// upstream presenta su shared key junto al usuario ya autenticado.
type VerifyRequest struct {
	AuthToken   string   `json:"auth_token"`
	UserUUID    string   `json:"user_uuid"`
	Tenant      string   `json:"tenant,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// VerifyResponse es la sesión materializada.
type VerifyResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"session_id"`
	Tenant    string    `json:"tenant"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutRequest es el body de POST /api/sallyport/logout.
type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

// LogoutResponse confirma la invalidación (idempotente).
type LogoutResponse struct {
	Success bool `json:"success"`
}
