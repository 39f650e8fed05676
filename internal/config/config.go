// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the service configuration.
type Config struct {
	// GoogleMapsAPIKey is the single credential used for routing, geocoding,
	// weather and places. An empty key is reported per request, not at startup.
	GoogleMapsAPIKey string

	Port        string
	Environment string
	LogLevel    zerolog.Level
	CORSOrigins []string

	ProviderTimeout    time.Duration
	ProviderMaxRetries uint64

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	RequireTLS      bool
	RegionQualifier string
}

// HasCredential reports whether the provider credential is configured.
func (c Config) HasCredential() bool {
	return c.GoogleMapsAPIKey != ""
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads an optional .env file and then the environment.
// A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	timeout, err := time.ParseDuration(getEnvOrDefault("PROVIDER_TIMEOUT", "7s"))
	if err != nil {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT: must be positive, got %s", timeout)
	}

	retries, err := strconv.ParseUint(getEnvOrDefault("PROVIDER_MAX_RETRIES", "2"), 10, 32)
	if err != nil {
		return Config{}, fmt.Errorf("PROVIDER_MAX_RETRIES: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	otelEnabled, err := parseBool("OTEL_ENABLED")
	if err != nil {
		return Config{}, err
	}
	requireTLS, err := parseBool("REQUIRE_TLS")
	if err != nil {
		return Config{}, err
	}

	ratio, err := strconv.ParseFloat(getEnvOrDefault("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("OTEL_SAMPLE_RATIO: %w", err)
	}
	if ratio < 0 || ratio > 1 {
		return Config{}, fmt.Errorf("OTEL_SAMPLE_RATIO: must be between 0 and 1, got %g", ratio)
	}

	return Config{
		GoogleMapsAPIKey:   strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")),
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		LogLevel:           level,
		CORSOrigins:        splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		ProviderTimeout:    timeout,
		ProviderMaxRetries: retries,
		OTelEnabled:        otelEnabled,
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio:    ratio,
		RequireTLS:         requireTLS,
		RegionQualifier:    getEnvOrDefault("REGION_QUALIFIER", "NY"),
	}, nil
}

func parseBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
