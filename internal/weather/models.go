package weather

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Observations and reports carry decimals as plain JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// WeatherType classifies a precipitation observation.
type WeatherType string

const (
	WeatherRain WeatherType = "rain"
	WeatherSnow WeatherType = "snow"
)

// Observation is the contract shared by the per-domain observation records.
// T is the concrete record type so that normalization can return a copy.
type Observation[T any] interface {
	Zip() string
	ObservedAt() time.Time
	// Normalize returns a copy with an ID assigned and CreatedOn in UTC.
	Normalize() T
}

// Precipitation is a single dated precipitation reading for a zip code.
type Precipitation struct {
	ID           uuid.UUID       `json:"id"`
	ZipCode      string          `json:"zipCode" validate:"required"`
	CreatedOn    time.Time       `json:"createdOn" validate:"required"`
	WeatherType  WeatherType     `json:"weatherType" validate:"required"`
	AmountInches decimal.Decimal `json:"amountInches"`
}

func (p Precipitation) Zip() string           { return p.ZipCode }
func (p Precipitation) ObservedAt() time.Time { return p.CreatedOn }

func (p Precipitation) Normalize() Precipitation {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedOn = p.CreatedOn.UTC()
	return p
}

// Temperature is a single dated high/low temperature reading for a zip code.
type Temperature struct {
	ID        uuid.UUID       `json:"id"`
	ZipCode   string          `json:"zipCode" validate:"required"`
	CreatedOn time.Time       `json:"createdOn" validate:"required"`
	TempHighF decimal.Decimal `json:"tempHighF"`
	TempLowF  decimal.Decimal `json:"tempLowF"`
}

func (t Temperature) Zip() string           { return t.ZipCode }
func (t Temperature) ObservedAt() time.Time { return t.CreatedOn }

func (t Temperature) Normalize() Temperature {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedOn = t.CreatedOn.UTC()
	return t
}

// WeatherReport is a computed snapshot of a zip code's observations over a
// trailing day-window. CreatedOn is the aggregation time, always UTC.
type WeatherReport struct {
	ID                  uuid.UUID       `json:"id"`
	ZipCode             string          `json:"zipCode"`
	Days                int             `json:"days"`
	CreatedOn           time.Time       `json:"createdOn"`
	AverageHighF        decimal.Decimal `json:"averageHighF"`
	AverageLowF         decimal.Decimal `json:"averageLowF"`
	RainfallTotalInches decimal.Decimal `json:"rainfallTotalInches"`
	SnowTotalInches     decimal.Decimal `json:"snowTotalInches"`
}
