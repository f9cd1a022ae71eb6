package providers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Identity is the verified (user id, email) pair returned by a provider.
// Both fields are non-empty whenever it is returned with a nil error.
type Identity struct {
	UserID string `json:"user_id"` // Provider user identifier (user_id or sub)
	Email  string `json:"email"`   // User's email
}

// ProviderConfig holds the OAuth2 configuration for a single Salesforce deployment.
type ProviderConfig struct {
	Name         string   // Name of the deployment (e.g., salesforce, salesforce-sandbox)
	ClientID     string   // Connected App consumer key
	ClientSecret string   // Connected App consumer secret
	RedirectURL  string   // OAuth2 Redirect URL
	InstanceURL  string   // Base URL (login.salesforce.com, test.salesforce.com, My Domain)
	Scopes       []string // OAuth2 Scopes, order is preserved

	// Derived from InstanceURL by NewSalesforceProvider.
	AuthURL     string
	TokenURL    string
	RefreshURL  string
	RevokeURL   string
	UserInfoURL string
	JwksURL     string

	HTTPClient *http.Client       // Base client, callers own timeouts
	Limiter    *rate.Limiter      // Optional throttle for userinfo lookups
	Logger     logrus.FieldLogger // Defaults to the logrus standard logger
}

// clone returns a copy that shares nothing mutable with c.
func (c ProviderConfig) clone() ProviderConfig {
	if c.Scopes != nil {
		c.Scopes = append([]string(nil), c.Scopes...)
	}
	return c
}
