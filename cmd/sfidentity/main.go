package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/y0ug/sfidentity/internal/webserver"
	"github.com/y0ug/sfidentity/pkg/auth"
)

func main() {
	// Initialize Logrus
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	envFileFlag := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	// Load .env file if present
	if err := godotenv.Load(*envFileFlag); err != nil {
		logger.Infof("No %s file found. Proceeding with environment variables.", *envFileFlag)
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		logger.Fatalf("Invalid LOG_LEVEL: %v", err)
	}
	logger.SetLevel(level)

	authConfig, err := auth.NewConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to initialize auth config: %v", err)
	}
	for _, name := range authConfig.Order {
		cfg := authConfig.Providers[name].Config()
		logger.WithFields(logrus.Fields{
			"provider":     name,
			"instance_url": cfg.InstanceURL,
			"scopes":       cfg.Scopes,
		}).Info("Auth provider configured")
	}

	webServerConfig, err := webserver.NewWebserverConfig()
	if err != nil {
		logger.Fatalf("Failed to load webserver configuration: %v", err)
	}

	authHandler := auth.NewHandler(authConfig, logger)
	server := webserver.NewWebServer(webServerConfig, authHandler, logger).NewServer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Initiating shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Info("Shutdown complete. Exiting.")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
