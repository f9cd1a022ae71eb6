package auth

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/y0ug/sfidentity/pkg/auth/providers"
	"golang.org/x/time/rate"
)

// Config holds the configured Salesforce deployments.
type Config struct {
	Providers map[string]providers.Provider
	Order     []string // Deployment names in OAUTH_PROVIDERS order
}

// NewConfig initializes the authentication configuration from environment variables.
func NewConfig(logger logrus.FieldLogger) (*Config, error) {
	authConfig := &Config{
		Providers: make(map[string]providers.Provider),
	}

	timeout, err := parseDurationString(getEnv("OAUTH_HTTP_TIMEOUT", ""))
	if err != nil {
		return nil, fmt.Errorf("error parsing OAUTH_HTTP_TIMEOUT: %w", err)
	}
	// Zero means no client timeout.
	httpClient := &http.Client{Timeout: timeout}

	providerNames := parseList(getEnv("OAUTH_PROVIDERS", providers.DefaultName))
	if len(providerNames) == 0 {
		return nil, ErrNoProviders
	}

	for _, providerName := range providerNames {
		if _, exists := authConfig.Providers[providerName]; exists {
			return nil, fmt.Errorf("provider '%s' is configured twice", providerName)
		}

		providerConfig, err := loadProviderConfig(providerName)
		if err != nil {
			return nil, fmt.Errorf("error loading config for provider '%s': %w", providerName, err)
		}
		providerConfig.HTTPClient = httpClient
		providerConfig.Logger = logger

		authConfig.Providers[providerName] = providers.NewSalesforceProvider(providerConfig)
		authConfig.Order = append(authConfig.Order, providerName)
	}

	return authConfig, nil
}

// envPrefix maps a deployment name to its environment prefix,
// e.g. salesforce-sandbox -> OAUTH_SALESFORCE_SANDBOX_.
func envPrefix(providerName string) string {
	return fmt.Sprintf("OAUTH_%s_", strings.ToUpper(strings.ReplaceAll(providerName, "-", "_")))
}

// loadProviderConfig loads the configuration for a single Salesforce deployment.
func loadProviderConfig(providerName string) (providers.ProviderConfig, error) {
	prefix := envPrefix(providerName)

	// Start with default configuration if available
	providerConfig, hasDefault := providers.DefaultConfigs[providerName]
	if !hasDefault {
		providerConfig = providers.ProviderConfig{Name: providerName}
	}

	// Overwrite with environment variables
	providerConfig.ClientID = getEnv(prefix+"CLIENT_ID", providerConfig.ClientID)
	providerConfig.ClientSecret = getEnv(prefix+"CLIENT_SECRET", providerConfig.ClientSecret)
	providerConfig.RedirectURL = getEnv(prefix+"REDIRECT_URL", providerConfig.RedirectURL)
	providerConfig.InstanceURL = getEnv(prefix+"INSTANCE_URL", providerConfig.InstanceURL)
	providerConfig.Scopes = parseList(getEnv(prefix+"SCOPES", ""))

	limiter, err := parseRateLimit(getEnv(prefix+"RATE_LIMIT", ""))
	if err != nil {
		return providers.ProviderConfig{}, fmt.Errorf("error parsing %sRATE_LIMIT: %w", prefix, err)
	}
	providerConfig.Limiter = limiter

	return providerConfig, nil
}

// getEnv retrieves the value of the environment variable named by the key.
// It returns the value, or the defaultValue if the variable is not present.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parseList splits a comma separated value, dropping blanks and keeping order.
func parseList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseRateLimit parses "rate:burst", rate in requests per second.
// An empty string disables throttling.
func parseRateLimit(s string) (*rate.Limiter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid rate limit '%s', expected rate:burst", s)
	}
	rateValue, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || rateValue <= 0 {
		return nil, fmt.Errorf("invalid rate value '%s'", parts[0])
	}
	burstValue, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || burstValue < 1 {
		return nil, fmt.Errorf("invalid burst value '%s'", parts[1])
	}
	return rate.NewLimiter(rate.Limit(rateValue), burstValue), nil
}

// parseDurationString parses a duration string formatted as "minutes=1, hours=2, days=3, seconds=30"
func parseDurationString(s string) (time.Duration, error) {
	parts := strings.Split(s, ",")
	var totalDuration time.Duration

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyValue := strings.SplitN(part, "=", 2)
		if len(keyValue) != 2 {
			return 0, fmt.Errorf("invalid format for part: '%s'", part)
		}
		key := strings.ToLower(strings.TrimSpace(keyValue[0]))
		valueStr := strings.TrimSpace(keyValue[1])
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: '%s'", key, valueStr)
		}

		switch key {
		case "minutes":
			totalDuration += time.Duration(value) * time.Minute
		case "hours":
			totalDuration += time.Duration(value) * time.Hour
		case "days":
			totalDuration += time.Duration(value) * 24 * time.Hour
		case "seconds":
			totalDuration += time.Duration(value) * time.Second
		default:
			return 0, fmt.Errorf("unknown time unit: '%s'", key)
		}
	}

	return totalDuration, nil
}
