package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/y0ug/sfidentity/pkg/auth"
	"github.com/y0ug/sfidentity/pkg/auth/providers"
)

// newFakeSalesforce serves a userinfo endpoint that accepts a single token.
func newFakeSalesforce(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/oauth2/userinfo" {
			http.NotFound(w, r)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			fmt.Fprint(w, `{"sub":"https://test.salesforce.com/id/00D/005","user_id":"005","email":"jane@example.com"}`)
		case "Bearer no-email":
			fmt.Fprint(w, `{"user_id":"006"}`)
		default:
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `Bad_OAuth_Token`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestWebServer(t *testing.T, origins []string) *WebServer {
	t.Helper()
	sf := newFakeSalesforce(t)
	logger, _ := logtest.NewNullLogger()

	authConfig := &auth.Config{
		Providers: map[string]providers.Provider{
			"salesforce-sandbox": providers.NewSalesforceProvider(providers.ProviderConfig{
				Name:        "salesforce-sandbox",
				ClientID:    "client-id",
				InstanceURL: sf.URL,
				HTTPClient:  sf.Client(),
				Logger:      logger,
			}),
		},
		Order: []string{"salesforce-sandbox"},
	}

	return NewWebServer(
		&WebserverConfig{ListenTo: ":0", CorsAllowedOrigins: origins},
		auth.NewHandler(authConfig, logger),
		logger,
	)
}

func TestIdentityRoute(t *testing.T) {
	srv := httptest.NewServer(newTestWebServer(t, nil).NewServer().Handler)
	defer srv.Close()

	tests := []struct {
		token      string
		wantStatus int
		wantUserID string
	}{
		{"good-token", http.StatusOK, "005"},
		{"no-email", http.StatusUnauthorized, ""},
		{"revoked", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/auth/salesforce-sandbox/identity", nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		var body struct {
			Status string              `json:"status"`
			Data   *providers.Identity `json:"data"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if resp.StatusCode != tt.wantStatus {
			t.Errorf("token %s: expected %d, got %d", tt.token, tt.wantStatus, resp.StatusCode)
		}
		if tt.wantUserID != "" {
			if body.Data == nil || body.Data.UserID != tt.wantUserID || body.Data.Email != "jane@example.com" {
				t.Errorf("token %s: unexpected identity %+v", tt.token, body.Data)
			}
		}
	}
}

func TestRoutesRejectUnknownProviderAndMethod(t *testing.T) {
	handler := newTestWebServer(t, nil).InitRouter()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/github/identity", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown provider, got %d", w.Code)
	}

	for _, target := range []string{"/auth/salesforce-sandbox/token", "/auth/salesforce-sandbox/revoke"} {
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for GET %s, got %d", target, w.Code)
		}
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/salesforce-sandbox/identity", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST identity, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for healthz, got %d", w.Code)
	}
}

func TestCorsPreflight(t *testing.T) {
	handler := newTestWebServer(t, []string{"https://app.example.com"}).NewServer().Handler

	req := httptest.NewRequest(http.MethodOptions, "/auth/salesforce-sandbox/identity", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("unexpected Access-Control-Allow-Origin '%s'", got)
	}
}

func TestNewWebserverConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	config, err := NewWebserverConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if config.ListenTo != ":9090" {
		t.Errorf("unexpected listen address '%s'", config.ListenTo)
	}
	if len(config.CorsAllowedOrigins) != 2 || config.CorsAllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected origins %v", config.CorsAllowedOrigins)
	}
}
