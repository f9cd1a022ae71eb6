package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// SalesforceProvider implements the Provider interface for Salesforce OAuth2.
// It holds no mutable state and is safe for concurrent use.
type SalesforceProvider struct {
	config       ProviderConfig
	oauth2Config *oauth2.Config
}

// NewSalesforceProvider creates a new instance of SalesforceProvider. Missing
// name, instance URL and scopes are defaulted and the endpoint URLs are
// derived from the instance URL. Credentials are not validated here.
func NewSalesforceProvider(config ProviderConfig) *SalesforceProvider {
	cfg := config.clone()
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.InstanceURL == "" {
		cfg.InstanceURL = DefaultInstanceURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	cfg.AuthURL = cfg.InstanceURL + authorizePath
	cfg.TokenURL = cfg.InstanceURL + tokenPath
	cfg.RefreshURL = cfg.TokenURL
	cfg.RevokeURL = cfg.InstanceURL + revokePath
	cfg.UserInfoURL = cfg.InstanceURL + userInfoPath
	cfg.JwksURL = cfg.InstanceURL + jwksPath

	return &SalesforceProvider{
		config: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       append([]string(nil), cfg.Scopes...),
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Name returns the name of the provider.
func (p *SalesforceProvider) Name() string {
	return p.config.Name
}

// Config returns a copy of the provider configuration.
func (p *SalesforceProvider) Config() ProviderConfig {
	return p.config.clone()
}

// OAuth2Config returns a copy of the OAuth2 configuration.
func (p *SalesforceProvider) OAuth2Config() *oauth2.Config {
	c := *p.oauth2Config
	c.Scopes = append([]string(nil), p.oauth2Config.Scopes...)
	return &c
}

// AuthCodeURL builds the authorization URL for the given state.
func (p *SalesforceProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.oauth2Config.AuthCodeURL(state, opts...)
}

// ExchangeCode exchanges the authorization code for an access token.
func (p *SalesforceProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return defaultExchangeCode(withHTTPClient(ctx, p.httpClient()), p, code)
}

// RenewAccessToken refreshes the access token using the refresh token.
func (p *SalesforceProvider) RenewAccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return defaultRenewAccessToken(withHTTPClient(ctx, p.httpClient()), p, refreshToken)
}

// RevokeToken revokes an access or refresh token.
func (p *SalesforceProvider) RevokeToken(ctx context.Context, token string) error {
	endpoint := p.config.RevokeURL
	form := url.Values{"token": {token}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	return checkStatus(endpoint, resp)
}

// LookupIdentity retrieves the user id and email from the userinfo endpoint.
// It performs exactly one request and never retries.
func (p *SalesforceProvider) LookupIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	log := p.config.Logger.WithField("provider", p.config.Name)

	if p.config.Limiter != nil {
		if err := p.config.Limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Endpoint: p.config.UserInfoURL, Err: err}
		}
	}

	client := p.bearerClient(ctx, accessToken)

	profile, err := fetchProfile(ctx, client, p.config.UserInfoURL)
	if err != nil {
		log.WithError(err).Warn("userinfo request failed")
		return nil, err
	}

	identity, err := identityFromProfile(profile)
	if err != nil {
		log.WithField("claims", profileKeys(profile)).Warn("userinfo response lacks user id or email")
		return nil, err
	}

	log.Debug("userinfo identity resolved")
	return identity, nil
}

// DecodeIDToken decodes and validates the ID token from Salesforce.
func (p *SalesforceProvider) DecodeIDToken(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, ErrMissingIDToken
	}

	claims, err := defaultDecodeIDToken(ctx, p, idToken)
	if err != nil {
		return nil, err
	}

	if !claims.VerifyAudience(p.config.ClientID, true) {
		return nil, ErrInvalidAudience
	}

	return identityFromProfile(claims)
}

func (p *SalesforceProvider) httpClient() *http.Client {
	if p.config.HTTPClient != nil {
		return p.config.HTTPClient
	}
	return http.DefaultClient
}

// bearerClient returns a client scoped to a single call that authenticates
// every request with accessToken. Redirects are returned as is so the token
// never reaches another host.
func (p *SalesforceProvider) bearerClient(ctx context.Context, accessToken string) *http.Client {
	base := p.httpClient()
	client := oauth2.NewClient(
		withHTTPClient(ctx, base),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)
	client.Timeout = base.Timeout
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

// IsAuthenticationFailure reports whether err came from the provider lookup
// rather than from the caller.
func IsAuthenticationFailure(err error) bool {
	var transportErr *TransportError
	var mappingErr *IdentityMappingError
	return errors.As(err, &transportErr) || errors.As(err, &mappingErr)
}
