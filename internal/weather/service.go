package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/cloud-weather/internal/observability"
)

// CacheConfig controls reuse of previously stored reports.
// When disabled every BuildReport call computes and stores a new report.
type CacheConfig struct {
	Enabled bool
	MaxAge  time.Duration
}

// ReportAggregator orchestrates fetching from both observation sources,
// reducing the results and persisting the combined report.
type ReportAggregator struct {
	precipitation Source[Precipitation]
	temperature   Source[Temperature]
	store         ReportStore
	logger        *zap.SugaredLogger
	metrics       *observability.Metrics
	clock         clockwork.Clock
	cache         CacheConfig

	mu        sync.Mutex
	lastStamp time.Time
}

// AggregatorOption customizes a ReportAggregator.
type AggregatorOption func(*ReportAggregator)

// WithClock sets the time source used to stamp reports and evaluate cache freshness.
func WithClock(c clockwork.Clock) AggregatorOption {
	return func(a *ReportAggregator) { a.clock = c }
}

// WithCache enables lookup of fresh stored reports before fetching.
func WithCache(cfg CacheConfig) AggregatorOption {
	return func(a *ReportAggregator) { a.cache = cfg }
}

// NewReportAggregator creates a new ReportAggregator.
func NewReportAggregator(
	precipitation Source[Precipitation],
	temperature Source[Temperature],
	store ReportStore,
	logger *zap.SugaredLogger,
	metrics *observability.Metrics,
	opts ...AggregatorOption,
) *ReportAggregator {
	a := &ReportAggregator{
		precipitation: precipitation,
		temperature:   temperature,
		store:         store,
		logger:        logger,
		metrics:       metrics,
		clock:         clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildReport aggregates the last days of observations for zip into a stored report.
// Both sources must succeed; no report is built from partial data.
func (a *ReportAggregator) BuildReport(ctx context.Context, zip string, days int) (WeatherReport, error) {
	report, err := a.buildReport(ctx, zip, days)
	if err != nil {
		a.metrics.ReportFailures.WithLabelValues(failureKind(err)).Inc()
		a.logger.Warnf("report for zip %s over %d days failed: %v", zip, days, err)
		return WeatherReport{}, err
	}
	return report, nil
}

func (a *ReportAggregator) buildReport(ctx context.Context, zip string, days int) (WeatherReport, error) {
	if err := ValidateDays(days); err != nil {
		return WeatherReport{}, err
	}

	if a.cache.Enabled {
		if cached, ok := a.cachedReport(ctx, zip, days); ok {
			return cached, nil
		}
	}

	var (
		precip []Precipitation
		temps  []Temperature
	)

	// The fetches are independent; a failure of either cancels the other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		precip, err = fetchObservations(gctx, a.precipitation, zip, days, a.metrics)
		return err
	})
	g.Go(func() error {
		var err error
		temps, err = fetchObservations(gctx, a.temperature, zip, days, a.metrics)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return WeatherReport{}, ctxErr
		}
		return WeatherReport{}, err
	}

	totalRain := TotalRain(precip)
	totalSnow := TotalSnow(precip)
	a.logger.Infof("zip: %s over last %d days: total snow: %s, rain: %s", zip, days, totalSnow, totalRain)

	avgHigh, err := AverageHigh(temps)
	if err != nil {
		return WeatherReport{}, fmt.Errorf("zip %s: %w", zip, err)
	}
	avgLow, err := AverageLow(temps)
	if err != nil {
		return WeatherReport{}, fmt.Errorf("zip %s: %w", zip, err)
	}

	report := WeatherReport{
		ID:                  uuid.New(),
		ZipCode:             zip,
		Days:                days,
		CreatedOn:           a.stamp(),
		AverageHighF:        avgHigh,
		AverageLowF:         avgLow,
		RainfallTotalInches: totalRain,
		SnowTotalInches:     totalSnow,
	}

	// A cancelled caller gets no write.
	if err := ctx.Err(); err != nil {
		return WeatherReport{}, err
	}

	if err := a.store.SaveReport(ctx, report); err != nil {
		return WeatherReport{}, fmt.Errorf("%w: save report for %s: %w", ErrPersistence, zip, err)
	}

	a.metrics.ReportsBuilt.Inc()
	return report, nil
}

// stamp returns the current UTC time, strictly after any earlier stamp from this
// aggregator so that concurrent builds never share a createdOn.
func (a *ReportAggregator) stamp() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now().UTC()
	if !now.After(a.lastStamp) {
		now = a.lastStamp.Add(time.Nanosecond)
	}
	a.lastStamp = now
	return now
}

// cachedReport looks for a stored report for the same window that is still fresh.
func (a *ReportAggregator) cachedReport(ctx context.Context, zip string, days int) (WeatherReport, bool) {
	notBefore := a.clock.Now().UTC().Add(-a.cache.MaxAge)

	report, err := a.store.FindReport(ctx, zip, days, notBefore)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warnf("report cache lookup failed for %s: %v", zip, err)
		}
		a.metrics.ReportCache.WithLabelValues("miss").Inc()
		return WeatherReport{}, false
	}

	a.metrics.ReportCache.WithLabelValues("hit").Inc()
	a.logger.Debugf("using cached report %s for zip %s over %d days", report.ID, zip, days)
	return report, true
}

// GetReports delegates to the underlying store.
func (a *ReportAggregator) GetReports(ctx context.Context, zip string) ([]WeatherReport, error) {
	return a.store.ListReports(ctx, zip)
}

func fetchObservations[T any](ctx context.Context, src Source[T], zip string, days int, metrics *observability.Metrics) ([]T, error) {
	start := time.Now()
	obs, err := src.Fetch(ctx, zip, days)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.UpstreamFetchDuration.WithLabelValues(src.Name(), outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("fetch %s observations for %s: %w", src.Name(), zip, err)
	}
	return obs, nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
