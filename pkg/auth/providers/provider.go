package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider defines the operations an OAuth2 identity provider exposes.
type Provider interface {
	// Name returns the name of the deployment (e.g., salesforce).
	Name() string

	// Config returns a copy of the provider configuration.
	Config() ProviderConfig

	// OAuth2Config returns the OAuth2 configuration for the provider.
	OAuth2Config() *oauth2.Config

	// AuthCodeURL builds the authorization URL. State is owned by the caller.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// ExchangeCode exchanges the authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// RenewAccessToken refreshes the access token using the refresh token.
	RenewAccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	// RevokeToken revokes an access or refresh token at the provider.
	RevokeToken(ctx context.Context, token string) error

	// LookupIdentity retrieves the user id and email using the access token.
	LookupIdentity(ctx context.Context, accessToken string) (*Identity, error)

	// DecodeIDToken validates the id_token attached to token and maps its claims.
	DecodeIDToken(ctx context.Context, token *oauth2.Token) (*Identity, error)
}
