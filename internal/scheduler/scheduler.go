package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/cloud-weather/internal/observability"
	"github.com/i474232898/cloud-weather/internal/weather"
)

// buildTimeout bounds a single zip's report build within a warming run.
const buildTimeout = 30 * time.Second

// ReportBuilder builds and stores a report for one zip code.
type ReportBuilder interface {
	BuildReport(ctx context.Context, zip string, days int) (weather.WeatherReport, error)
}

// Scheduler periodically builds reports for configured zip codes so that
// cached lookups find a fresh report.
type Scheduler struct {
	scheduler *gocron.Scheduler
	builder   ReportBuilder
	zips      []string
	days      int
	interval  time.Duration
	logger    *zap.SugaredLogger
	metrics   *observability.Metrics
}

// New creates a new Scheduler.
func New(zips []string, days int, interval time.Duration, builder ReportBuilder, logger *zap.SugaredLogger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		builder:   builder,
		zips:      zips,
		days:      days,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.zips) == 0 {
		s.logger.Info("scheduler: no zip codes configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		s.runOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// runOnce builds a report for every configured zip code concurrently.
func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Infof("scheduler: warming reports for %d zip codes over %d days", len(s.zips), s.days)

	var wg sync.WaitGroup
	for _, zip := range s.zips {
		zip := zip
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, buildTimeout)
			defer cancel()

			if _, err := s.builder.BuildReport(ctx, zip, s.days); err != nil {
				s.logger.Warnf("scheduler: report warm failed for %s: %v", zip, err)
			}
		}()
	}
	wg.Wait()

	s.metrics.WarmRuns.Inc()
	s.logger.Info("scheduler: completed report warming run")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
