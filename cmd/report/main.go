package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/cloud-weather/internal/api/http"
	"github.com/i474232898/cloud-weather/internal/config"
	"github.com/i474232898/cloud-weather/internal/observability"
	"github.com/i474232898/cloud-weather/internal/scheduler"
	"github.com/i474232898/cloud-weather/internal/store"
	"github.com/i474232898/cloud-weather/internal/weather"
	"github.com/i474232898/cloud-weather/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("report service: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadReport()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// Shared HTTP client for calls to the observation services.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	opts := providers.ClientOptions{
		Backoff: providers.BackoffConfig{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		EmptyOnFailure: cfg.EmptyOnFailure,
	}
	precipitation := providers.NewPrecipitationClient(httpClient, providers.Endpoint(cfg.Precipitation), opts, logger)
	temperature := providers.NewTemperatureClient(httpClient, providers.Endpoint(cfg.Temperature), opts, logger)

	reports, db, err := openReportStore(&cfg.Config, logger)
	if err != nil {
		return err
	}

	var checks []httpapi.HealthCheck
	if db != nil {
		defer closeStore(db, logger)
		checks = append(checks, db.Ping)
	}

	aggregator := weather.NewReportAggregator(precipitation, temperature, reports, logger, metrics,
		weather.WithCache(weather.CacheConfig{Enabled: cfg.CacheEnabled, MaxAge: cfg.CacheMaxAge}),
	)

	// Scheduler that periodically rebuilds reports for configured zip codes.
	sched := scheduler.New(cfg.WarmZips, cfg.WarmDays, cfg.WarmInterval, aggregator, logger, metrics)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(cfg.Service, prometheus.DefaultGatherer, checks...)
	httpapi.RegisterReportRoutes(app, aggregator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return httpapi.Serve(ctx, app, cfg.Port, cfg.ShutdownTimeout, logger)
}

// openReportStore selects the report store for the configured backend.
// The returned database is nil for the memory backend.
func openReportStore(cfg *config.Config, logger *zap.SugaredLogger) (weather.ReportStore, *store.SQLiteStore, error) {
	if cfg.StoreBackend == "memory" {
		logger.Warn("using in-memory store; reports are lost on restart")
		return store.NewMemoryReportStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), nil, nil
	}

	db, err := store.NewSQLite(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("using sqlite store at %s", cfg.DatabaseDSN)
	return db, db, nil
}

func closeStore(db *store.SQLiteStore, logger *zap.SugaredLogger) {
	if err := db.Close(); err != nil {
		logger.Errorf("close store: %v", err)
	}
}
