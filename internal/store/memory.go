package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/cloud-weather/internal/weather"
)

// ErrNotFound is returned when no data is available for a given zip code.
var ErrNotFound = weather.ErrNotFound

// ReportHistory holds the time-ordered reports stored for one zip code.
type ReportHistory struct {
	Reports []weather.WeatherReport
}

// MemoryReportStore is a concurrency-safe in-memory implementation of weather.ReportStore.
type MemoryReportStore struct {
	mu sync.RWMutex

	// key: zip code, value: history
	data map[string]*ReportHistory

	// retention configuration
	maxHistory int           // max number of reports per zip
	maxAge     time.Duration // optional max age relative to the newest report
}

// NewMemoryReportStore creates a new MemoryReportStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryReportStore(maxHistory int, maxAge time.Duration) *MemoryReportStore {
	return &MemoryReportStore{
		data:       make(map[string]*ReportHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveReport appends a report for its zip code and enforces retention.
func (s *MemoryReportStore) SaveReport(ctx context.Context, report weather.WeatherReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[report.ZipCode]
	if !ok {
		history = &ReportHistory{}
		s.data[report.ZipCode] = history
	}

	// Keep the history sorted by CreatedOn; concurrent builds may finish out of order.
	i := sort.Search(len(history.Reports), func(i int) bool {
		return history.Reports[i].CreatedOn.After(report.CreatedOn)
	})
	history.Reports = append(history.Reports, weather.WeatherReport{})
	copy(history.Reports[i+1:], history.Reports[i:])
	history.Reports[i] = report

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Reports) > s.maxHistory {
		over := len(history.Reports) - s.maxHistory
		history.Reports = history.Reports[over:]
	}

	// Enforce retention by age, relative to the newest report so that the
	// reports' own clock decides what is old.
	if s.maxAge > 0 {
		cutoff := history.Reports[len(history.Reports)-1].CreatedOn.Add(-s.maxAge)
		i := 0
		for ; i < len(history.Reports); i++ {
			if !history.Reports[i].CreatedOn.Before(cutoff) {
				break
			}
		}
		history.Reports = history.Reports[i:]
	}
	return nil
}

// FindReport returns the newest report for zip and days created at or after notBefore.
func (s *MemoryReportStore) FindReport(ctx context.Context, zip string, days int, notBefore time.Time) (weather.WeatherReport, error) {
	if err := ctx.Err(); err != nil {
		return weather.WeatherReport{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[zip]
	if !ok {
		return weather.WeatherReport{}, ErrNotFound
	}
	for i := len(history.Reports) - 1; i >= 0; i-- {
		r := history.Reports[i]
		if r.CreatedOn.Before(notBefore) {
			break
		}
		if r.Days == days {
			return r, nil
		}
	}
	return weather.WeatherReport{}, ErrNotFound
}

// ListReports returns all reports for zip, newest first.
func (s *MemoryReportStore) ListReports(ctx context.Context, zip string) ([]weather.WeatherReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[zip]
	if !ok || len(history.Reports) == 0 {
		return nil, ErrNotFound
	}

	out := make([]weather.WeatherReport, 0, len(history.Reports))
	for i := len(history.Reports) - 1; i >= 0; i-- {
		out = append(out, history.Reports[i])
	}
	return out, nil
}

// MemoryObservationStore is a concurrency-safe in-memory weather.ObservationStore.
type MemoryObservationStore[T weather.Observation[T]] struct {
	mu   sync.RWMutex
	data map[string][]T
}

// NewMemoryObservationStore creates an empty observation store.
func NewMemoryObservationStore[T weather.Observation[T]]() *MemoryObservationStore[T] {
	return &MemoryObservationStore[T]{data: make(map[string][]T)}
}

func (s *MemoryObservationStore[T]) Add(ctx context.Context, obs T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[obs.Zip()] = append(s.data[obs.Zip()], obs)
	return nil
}

func (s *MemoryObservationStore[T]) Since(ctx context.Context, zip string, since time.Time) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, obs := range s.data[zip] {
		if obs.ObservedAt().After(since) {
			out = append(out, obs)
		}
	}
	return out, nil
}
