package weather

import (
	"context"
	"time"
)

// Source abstracts an observation service reachable over the network
// (the precipitation and temperature services).
type Source[T any] interface {
	Name() string
	Fetch(ctx context.Context, zip string, days int) ([]T, error)
}

// ReportStore is the contract the report stores (in-memory and SQLite) satisfy.
type ReportStore interface {
	SaveReport(ctx context.Context, report WeatherReport) error
	// FindReport returns the newest report for zip and days created at or after notBefore.
	FindReport(ctx context.Context, zip string, days int, notBefore time.Time) (WeatherReport, error)
	// ListReports returns all reports for zip, newest first.
	ListReports(ctx context.Context, zip string) ([]WeatherReport, error)
}

// ObservationStore persists observations of a single domain.
type ObservationStore[T any] interface {
	Add(ctx context.Context, obs T) error
	// Since returns observations for zip created strictly after since.
	Since(ctx context.Context, zip string, since time.Time) ([]T, error)
}
