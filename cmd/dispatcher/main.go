package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rescuenet/dispatch/internal/adapters/database"
	mqttsink "github.com/rescuenet/dispatch/internal/adapters/mqtt"
	"github.com/rescuenet/dispatch/internal/application/services"
	mqttclient "github.com/rescuenet/dispatch/internal/infrastructure/clients/mqtt"
	"github.com/rescuenet/dispatch/internal/infrastructure/clients/postgres"
	"github.com/rescuenet/dispatch/internal/infrastructure/observability"
	"github.com/rescuenet/dispatch/pkg/config"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.Service.Name, cfg.Service.Env)
	zlog.Info().Str("env", cfg.Service.Env).Msg("starting dispatch engine")

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	brokerClient, err := mqttclient.NewClient(&cfg.MQTT)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to broker")
	}
	defer brokerClient.Close()

	// Setup repos
	ambulanceRepo := database.NewAmbulanceAdapter(pgClient)
	callRepo := database.NewCallAdapter(pgClient)
	waypointRepo := database.NewWaypointAdapter(pgClient)
	locationRepo := database.NewLocationAdapter(pgClient)
	hospitalRepo := database.NewHospitalAdapter(pgClient)
	grantRepo := database.NewGrantAdapter(pgClient)

	// Setup services
	dispatcher := services.NewDispatcher(mqttsink.NewSink(brokerClient))

	permissionService, err := services.NewPermissionService(grantRepo, cfg.Dispatch.PermissionCacheSize)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create permission service")
	}

	engine := &services.Engine{
		Ambulances: services.NewAmbulanceService(
			ambulanceRepo,
			dispatcher,
			permissionService,
			cfg.Dispatch.StationaryRadius,
		),
		Calls:       services.NewCallService(callRepo, dispatcher),
		Waypoints:   services.NewWaypointService(waypointRepo, callRepo, dispatcher),
		Locations:   services.NewLocationService(locationRepo),
		Hospitals:   services.NewHospitalService(hospitalRepo, permissionService),
		Permissions: permissionService,
		Dispatcher:  dispatcher,
	}
	if err := engine.Seed(context.Background()); err != nil {
		zlog.Error().Err(err).Msg("failed to seed retained broker state")
	}
	zlog.Info().Msg("transition engine ready")

	// Health and metrics endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := pgClient.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Service.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("addr", cfg.Service.MetricsAddr).Msg("metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("metrics server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("error during server shutdown")
	}

	zlog.Info().Msg("stopped")
}
