package weather

import (
	"errors"
	"fmt"
)

const (
	MinDays = 1
	MaxDays = 30
)

var (
	// ErrInvalidRange is returned when a day-window falls outside [MinDays, MaxDays].
	ErrInvalidRange = errors.New("days must be between 1 and 30")
	// ErrUpstreamUnavailable is returned when an observation source cannot be reached
	// or answers with a non-success status.
	ErrUpstreamUnavailable = errors.New("observation source unavailable")
	// ErrNoData is returned when an average is requested over no observations.
	ErrNoData = errors.New("no observations available")
	// ErrPersistence is returned when a report or observation cannot be stored.
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound is returned by stores when no record matches a lookup.
	ErrNotFound = errors.New("no weather data for zip code")
)

// ValidateDays checks that days lies within the supported window.
func ValidateDays(days int) error {
	if days < MinDays || days > MaxDays {
		return fmt.Errorf("%w: got %d", ErrInvalidRange, days)
	}
	return nil
}
