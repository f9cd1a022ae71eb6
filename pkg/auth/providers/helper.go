package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/jwk"
	"golang.org/x/oauth2"
)

// withHTTPClient makes the oauth2 package use client for token endpoint calls.
func withHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// Refresh the access token using the refresh token for the oauth2 provider
func defaultRenewAccessToken(ctx context.Context, p Provider, refreshToken string) (*oauth2.Token, error) {
	tokenSource := p.OAuth2Config().TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
	})

	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	return newToken, nil
}

func defaultExchangeCode(ctx context.Context, p Provider, code string) (*oauth2.Token, error) {
	token, err := p.OAuth2Config().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// fetchProfile issues a single GET against endpoint and decodes the body as a
// JSON object. Authentication is carried by client.
func fetchProfile(ctx context.Context, client *http.Client, endpoint string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(endpoint, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	var profile map[string]interface{}
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Malformed:  true,
			Err:        fmt.Errorf("failed to decode provider user info response: %w", err),
		}
	}
	if profile == nil {
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Malformed:  true,
			Err:        fmt.Errorf("provider user info response is not an object"),
		}
	}
	return profile, nil
}

// checkStatus turns a non-2xx response into a TransportError carrying a
// bounded prefix of the body.
func checkStatus(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &TransportError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// identityFromProfile projects a loosely typed profile onto an Identity.
// user_id takes precedence over sub; values that are not strings count as absent.
func identityFromProfile(profile map[string]interface{}) (*Identity, error) {
	userID := stringClaim(profile, "user_id")
	if userID == "" {
		userID = stringClaim(profile, "sub")
	}
	email := stringClaim(profile, "email")

	if userID == "" || email == "" {
		return nil, &IdentityMappingError{Profile: profile}
	}
	return &Identity{UserID: userID, Email: email}, nil
}

func stringClaim(profile map[string]interface{}, key string) string {
	s, _ := profile[key].(string)
	return s
}

// decodeIDToken decodes and validates the ID token using the provider's JWKs.
func defaultDecodeIDToken(ctx context.Context, p Provider, idToken string) (jwt.MapClaims, error) {
	cfg := p.Config()
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	set, err := jwk.Fetch(ctx, cfg.JwksURL, jwk.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKs: %w", err)
	}

	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid header not found")
		}

		key, exists := set.LookupKeyID(kid)
		if !exists {
			return nil, fmt.Errorf("unable to find key %s", kid)
		}

		var publicKey interface{}
		if err := key.Raw(&publicKey); err != nil {
			return nil, fmt.Errorf("failed to parse JWK: %w", err)
		}

		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid ID token")
}
