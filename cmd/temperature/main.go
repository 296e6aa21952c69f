package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/cloud-weather/internal/api/http"
	"github.com/i474232898/cloud-weather/internal/config"
	"github.com/i474232898/cloud-weather/internal/observability"
	"github.com/i474232898/cloud-weather/internal/store"
	"github.com/i474232898/cloud-weather/internal/weather"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("temperature service: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(config.ServiceTemperature)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	obsStore, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	var checks []httpapi.HealthCheck
	if db != nil {
		defer closeStore(db, logger)
		checks = append(checks, db.Ping)
	}

	service := weather.NewObservationService(config.ServiceTemperature, obsStore, logger, metrics, nil)

	app := httpapi.NewApp(cfg.Service, prometheus.DefaultGatherer, checks...)
	httpapi.RegisterObservationRoutes(app, service)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return httpapi.Serve(ctx, app, cfg.Port, cfg.ShutdownTimeout, logger)
}

// openStore selects the observation store for the configured backend.
// The returned database is nil for the memory backend.
func openStore(cfg *config.Config, logger *zap.SugaredLogger) (weather.ObservationStore[weather.Temperature], *store.SQLiteStore, error) {
	if cfg.StoreBackend == "memory" {
		logger.Warn("using in-memory store; observations are lost on restart")
		return store.NewMemoryObservationStore[weather.Temperature](), nil, nil
	}

	db, err := store.NewSQLite(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("using sqlite store at %s", cfg.DatabaseDSN)
	return db.Temperature(), db, nil
}

func closeStore(db *store.SQLiteStore, logger *zap.SugaredLogger) {
	if err := db.Close(); err != nil {
		logger.Errorf("close store: %v", err)
	}
}
