package auth

import "github.com/y0ug/sfidentity/pkg/auth/providers"

// HttpResp represents the standard HTTP response structure.
// swagger:model
type HttpResp struct {
	Status  string      `json:"status" example:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message" example:"Operation completed successfully"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"` // Salesforce omits it on refresh
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	InstanceURL  string `json:"instance_url,omitempty"` // Org instance returned by the token endpoint

	Identity *providers.Identity `json:"identity,omitempty"` // From a verified id_token
}

// ProviderSummary describes a configured deployment without its secrets.
type ProviderSummary struct {
	Name        string   `json:"name"`
	InstanceURL string   `json:"instance_url"`
	Scopes      []string `json:"scopes"`
}

type AuthorizeResponse struct {
	URL string `json:"url"`
}
