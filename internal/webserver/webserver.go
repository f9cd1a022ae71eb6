package webserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/y0ug/sfidentity/pkg/auth"
)

// WebServer holds the data needed for handling HTTP requests.
type WebServer struct {
	config      *WebserverConfig
	authHandler *auth.Handler
	Logger      *logrus.Logger
}

// NewWebServer initializes a new WebServer.
func NewWebServer(config *WebserverConfig, authHandler *auth.Handler, logger *logrus.Logger) *WebServer {
	return &WebServer{
		config:      config,
		authHandler: authHandler,
		Logger:      logger,
	}
}

// NewServer builds the HTTP server with routing and CORS applied.
// The caller owns ListenAndServe and Shutdown.
func (ws *WebServer) NewServer() *http.Server {
	corsOptions := cors.Options{
		AllowedOrigins:   ws.config.CorsAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		Debug:            false,
	}

	return &http.Server{
		Addr:    ws.config.ListenTo,
		Handler: cors.New(corsOptions).Handler(ws.InitRouter()),
	}
}

// InitRouter initializes the HTTP routes.
func (ws *WebServer) InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Registered on the root router: a method mismatch inside a subrouter
	// surfaces as 404 instead of 405.
	r.HandleFunc("/auth/providers", ws.authHandler.HandleProviders).Methods(http.MethodGet)
	r.HandleFunc("/auth/{provider}/authorize", ws.authHandler.HandleAuthorize).Methods(http.MethodGet)
	r.HandleFunc("/auth/{provider}/token", ws.authHandler.HandleToken).Methods(http.MethodPost)
	r.HandleFunc("/auth/{provider}/refresh", ws.authHandler.HandleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/{provider}/revoke", ws.authHandler.HandleRevoke).Methods(http.MethodPost)
	r.HandleFunc("/auth/{provider}/identity", ws.authHandler.HandleIdentity).Methods(http.MethodGet)

	r.HandleFunc("/healthz", ws.handleHealth).Methods(http.MethodGet)
	r.Use(ws.logRequests)

	return r
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	auth.WriteSuccessResponse(w, "ok", nil)
}

// logRequests logs method and path only; query strings and headers may carry tokens.
func (ws *WebServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}
