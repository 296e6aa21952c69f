package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/i474232898/cloud-weather/internal/observability"
)

// ObservationService is the read/write policy of a single observation domain
// (precipitation or temperature).
type ObservationService[T Observation[T]] struct {
	domain  string
	store   ObservationStore[T]
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewObservationService creates a service for the named domain. A nil clock uses real time.
func NewObservationService[T Observation[T]](
	domain string,
	store ObservationStore[T],
	logger *zap.SugaredLogger,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) *ObservationService[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ObservationService[T]{
		domain:  domain,
		store:   store,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// Domain returns the observation domain name, e.g. "precipitation".
func (s *ObservationService[T]) Domain() string {
	return s.domain
}

// Since returns the observations for zip recorded within the trailing day-window.
func (s *ObservationService[T]) Since(ctx context.Context, zip string, days int) ([]T, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	since := s.clock.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	obs, err := s.store.Since(ctx, zip, since)
	if err != nil {
		return nil, fmt.Errorf("list %s observations for %s: %w", s.domain, zip, err)
	}
	if obs == nil {
		obs = []T{}
	}

	s.metrics.ObservationsServed.WithLabelValues(s.domain).Add(float64(len(obs)))
	return obs, nil
}

// Add normalizes obs to UTC and stores it, returning the stored record.
func (s *ObservationService[T]) Add(ctx context.Context, obs T) (T, error) {
	normalized := obs.Normalize()

	if err := s.store.Add(ctx, normalized); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: add %s observation for %s: %w", ErrPersistence, s.domain, normalized.Zip(), err)
	}

	s.metrics.ObservationsWritten.WithLabelValues(s.domain).Inc()
	s.logger.Debugf("stored %s observation for %s at %s", s.domain, normalized.Zip(), normalized.ObservedAt().Format(time.RFC3339))
	return normalized, nil
}
