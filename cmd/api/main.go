// Package main provides the entrypoint for the leave-time API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/api"
	"github.com/leavetime/leavetime/internal/api/middleware"
	"github.com/leavetime/leavetime/internal/config"
	"github.com/leavetime/leavetime/internal/geocoding/googlegeocode"
	"github.com/leavetime/leavetime/internal/places"
	"github.com/leavetime/leavetime/internal/places/googleplaces"
	"github.com/leavetime/leavetime/internal/provider/resilience"
	"github.com/leavetime/leavetime/internal/routing/googleroutes"
	"github.com/leavetime/leavetime/internal/telemetry"
	"github.com/leavetime/leavetime/internal/trip"
	"github.com/leavetime/leavetime/internal/weather"
	"github.com/leavetime/leavetime/internal/weather/googleweather"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "leavetime-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting leave-time API")

	if !cfg.HasCredential() {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set - estimate and places requests will fail")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		Insecure:       !cfg.IsProduction(),
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.OTelSampleRatio).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Provider clients share one registry so /api/ops/status sees all of them
	registry := resilience.NewRegistry()
	settings := resilience.Settings{
		Timeout:    cfg.ProviderTimeout,
		MaxRetries: cfg.ProviderMaxRetries,
		Registry:   registry,
		Metrics:    providerMetrics,
	}

	routesClient := googleroutes.NewClient(googleroutes.ClientConfig{
		APIKey:     cfg.GoogleMapsAPIKey,
		Resilience: settings,
		Logger:     log.With().Str("component", "google-routes").Logger(),
	})
	geocodeClient := googlegeocode.NewClient(googlegeocode.ClientConfig{
		APIKey:     cfg.GoogleMapsAPIKey,
		Resilience: settings,
		Region:     cfg.RegionQualifier,
		Logger:     log.With().Str("component", "google-geocode").Logger(),
	})
	weatherClient := googleweather.NewClient(googleweather.ClientConfig{
		APIKey:     cfg.GoogleMapsAPIKey,
		Resilience: settings,
		Logger:     log.With().Str("component", "google-weather").Logger(),
	})
	placesClient := googleplaces.NewClient(googleplaces.ClientConfig{
		APIKey:     cfg.GoogleMapsAPIKey,
		Resilience: settings,
		Logger:     log.With().Str("component", "google-places").Logger(),
	})
	log.Info().Int("providers", registry.ProviderCount()).Msg("provider clients initialized")

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherClient,
		Logger:   log.With().Str("component", "weather").Logger(),
		Metrics:  providerMetrics,
	})

	tripService := trip.NewService(trip.ServiceConfig{
		Configured: cfg.HasCredential(),
		Durations:  routesClient,
		Geocoder:   geocodeClient,
		Weather:    weatherService,
		Metrics:    providerMetrics,
		Logger:     log.With().Str("component", "trip").Logger(),
	})

	placesService := places.NewService(placesClient)

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		Metrics:     httpMetrics,
		CORSOrigins: cfg.CORSOrigins,
		RequireTLS:  cfg.RequireTLS,
		Trips:       tripService,
		Places:      placesService,
		Health:      registry,
		Configured:  cfg.HasCredential(),
	})

	// Estimates run to completion once started, so the write deadline must
	// cover the slowest search the provider settings allow.
	writeTimeout := trip.ProviderCallBudget(settings.CallBudget(), googleweather.MaxPages) + 10*time.Second
	log.Info().Dur("write_timeout", writeTimeout).Msg("estimate write deadline")

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
