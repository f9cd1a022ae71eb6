package providers

const (
	DefaultName        = "salesforce"
	DefaultInstanceURL = "https://login.salesforce.com"
	SandboxInstanceURL = "https://test.salesforce.com"

	authorizePath = "/services/oauth2/authorize"
	tokenPath     = "/services/oauth2/token"
	revokePath    = "/services/oauth2/revoke"
	userInfoPath  = "/services/oauth2/userinfo"
	jwksPath      = "/id/keys"
)

// DefaultScopes returns the scopes requested when none are configured.
// refresh_token is required for offline access.
func DefaultScopes() []string {
	return []string{"openid", "email", "profile", "refresh_token"}
}

// DefaultConfigs holds default configurations for well-known deployments.
var DefaultConfigs = map[string]ProviderConfig{
	"salesforce": {
		Name:        "salesforce",
		InstanceURL: DefaultInstanceURL,
	},
	"salesforce-sandbox": {
		Name:        "salesforce-sandbox",
		InstanceURL: SandboxInstanceURL,
	},
}
