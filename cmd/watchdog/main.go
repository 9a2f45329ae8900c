// Package main provides the entrypoint for the serverwatch watchdog
// daemon.
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

	"github.com/serverwatch/serverwatch/internal/config"
	"github.com/serverwatch/serverwatch/internal/dispatch"
	"github.com/serverwatch/serverwatch/internal/ops"
	"github.com/serverwatch/serverwatch/internal/telemetry"
	"github.com/serverwatch/serverwatch/internal/watchdog"
	"github.com/serverwatch/serverwatch/pkg/timestring"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "serverwatch-watchdog"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting serverwatch watchdog")

	settingsPath := envOr("WATCHDOG_SETTINGS_FILE", "serverInfo/watchdog.env")
	snapshotPath := envOr("WATCHDOG_SNAPSHOT_PATH", "serverInfo/system_info.json")
	stateDir := envOr("WATCHDOG_STATE_DIR", "serverInfo")
	port := envOr("APP_PORT", "8080")

	interval, err := timestring.Parse(envOr("WATCHDOG_CHECK_INTERVAL", "5m"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WATCHDOG_CHECK_INTERVAL")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"
	otlpEndpoint := envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    envOr("APP_ENV", "development"),
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
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

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	instruments, err := telemetry.NewCycleInstruments(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register cycle instruments")
	}

	store := config.NewStore(config.StoreConfig{
		Path:   settingsPath,
		Logger: log,
		Getenv: os.Getenv,
	})
	log.Info().
		Str("settings_file", settingsPath).
		Str("server_name", store.Current().ServerName).
		Msg("configuration resolved")

	service := watchdog.NewService(watchdog.ServiceConfig{
		Store:        store,
		States:       dispatch.NewFileStore(stateDir, log),
		Deliverer:    dispatch.LogDeliverer{Logger: log},
		Logger:       log,
		SnapshotPath: snapshotPath,
		Interval:     interval,
		Instruments:  instruments,
	})

	router := ops.NewRouter(ops.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Service:   service,
	})
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		log.Info().Str("port", port).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops server error")
		}
	}()

	go func() {
		if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("watchdog loop error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down watchdog")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server forced to shutdown")
	}

	log.Info().Msg("watchdog stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
