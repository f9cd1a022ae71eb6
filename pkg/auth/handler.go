package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/y0ug/sfidentity/pkg/auth/providers"
	"golang.org/x/oauth2"
)

// Handler exposes the configured providers over HTTP. It keeps no tokens.
type Handler struct {
	Config *Config
	Logger logrus.FieldLogger
}

// NewHandler initializes a new authentication handler.
func NewHandler(config *Config, logger logrus.FieldLogger) *Handler {
	return &Handler{
		Config: config,
		Logger: logger,
	}
}

func (h *Handler) provider(r *http.Request) (providers.Provider, error) {
	p, ok := h.Config.Providers[mux.Vars(r)["provider"]]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// HandleProviders lists the configured deployments.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	summaries := make([]ProviderSummary, 0, len(h.Config.Order))
	for _, name := range h.Config.Order {
		cfg := h.Config.Providers[name].Config()
		summaries = append(summaries, ProviderSummary{
			Name:        cfg.Name,
			InstanceURL: cfg.InstanceURL,
			Scopes:      cfg.Scopes,
		})
	}
	WriteSuccessResponse(w, "Providers retrieved successfully", summaries)
}

// HandleAuthorize returns the authorization URL. The state parameter is
// generated and checked by the caller.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		WriteErrorResponse(w, "state is required", http.StatusBadRequest)
		return
	}

	WriteSuccessResponse(w, "Authorization URL built", AuthorizeResponse{URL: p.AuthCodeURL(state)})
}

// HandleToken exchanges an authorization code for tokens.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}

	code := r.PostFormValue("code")
	if code == "" {
		WriteErrorResponse(w, "code is required", http.StatusBadRequest)
		return
	}

	token, err := p.ExchangeCode(r.Context(), code)
	if err != nil {
		h.Logger.WithError(err).WithField("provider", p.Name()).Error("Token exchange failed")
		WriteErrorResponse(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	resp := newTokenResponse(token)
	resp.Identity = h.identityFromIDToken(r, p, token)
	WriteSuccessResponse(w, "Token exchange successful", resp)
}

// HandleRefresh refreshes an access token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}

	refreshToken := r.PostFormValue("refresh_token")
	if refreshToken == "" {
		WriteErrorResponse(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	token, err := p.RenewAccessToken(r.Context(), refreshToken)
	if err != nil {
		h.Logger.WithError(err).WithField("provider", p.Name()).Error("Token refresh failed")
		WriteErrorResponse(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	resp := newTokenResponse(token)
	resp.Identity = h.identityFromIDToken(r, p, token)
	WriteSuccessResponse(w, "Token refreshed successfully", resp)
}

// HandleRevoke revokes an access or refresh token at the provider.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}

	token := r.PostFormValue("token")
	if token == "" {
		WriteErrorResponse(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := p.RevokeToken(r.Context(), token); err != nil {
		h.Logger.WithError(err).WithField("provider", p.Name()).Error("Token revocation failed")
		WriteErrorResponse(w, "Failed to revoke token", http.StatusBadGateway)
		return
	}

	WriteSuccessResponse(w, "Token revoked", nil)
}

// HandleIdentity resolves the bearer token of the request to a user id and email.
func (h *Handler) HandleIdentity(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}

	accessToken := extractBearerToken(r)
	if accessToken == "" {
		WriteErrorResponse(w, ErrMissingBearerToken.Error(), http.StatusUnauthorized)
		return
	}

	identity, err := p.LookupIdentity(r.Context(), accessToken)
	if err != nil {
		log := h.Logger.WithFields(logrus.Fields{
			"provider":  p.Name(),
			"client_ip": getClientIP(r),
		})
		if providers.IsAuthenticationFailure(err) {
			log.Info("Identity lookup rejected")
			WriteErrorResponse(w, "authentication failed", http.StatusUnauthorized)
			return
		}
		log.WithError(err).Error("Identity lookup failed")
		WriteErrorResponse(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	WriteSuccessResponse(w, "Identity resolved", identity)
}

// identityFromIDToken verifies the id_token returned with token, if any.
// A token that fails verification is logged and left out of the response.
func (h *Handler) identityFromIDToken(r *http.Request, p providers.Provider, token *oauth2.Token) *providers.Identity {
	identity, err := p.DecodeIDToken(r.Context(), token)
	if err != nil {
		if !errors.Is(err, providers.ErrMissingIDToken) {
			h.Logger.WithError(err).WithField("provider", p.Name()).Warn("id_token verification failed")
		}
		return nil
	}
	return identity
}

func newTokenResponse(token *oauth2.Token) TokenResponse {
	resp := TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
	}
	if !token.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	if instanceURL, ok := token.Extra("instance_url").(string); ok {
		resp.InstanceURL = instanceURL
	}
	return resp
}
