package oauth

// TokenRequest es el body de POST /api/gcp/token. Los clientes MCP envían
// JSON; también se acepta application/x-www-form-urlencoded con los mismos
// nombres de campo.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	Scope        string `json:"scope,omitempty"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// Tenant opcional en el body; el header y el subdominio tienen prioridad.
	Tenant string `json:"tenant,omitempty"`
}
