package weather

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// reportPrecision is the number of decimal places kept for report metrics.
const reportPrecision = 1

// TotalRain sums rainfall amounts, rounded to one decimal place.
func TotalRain(obs []Precipitation) decimal.Decimal {
	return totalOf(obs, WeatherRain)
}

// TotalSnow sums snowfall amounts, rounded to one decimal place.
func TotalSnow(obs []Precipitation) decimal.Decimal {
	return totalOf(obs, WeatherSnow)
}

func totalOf(obs []Precipitation, kind WeatherType) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range obs {
		if p.WeatherType == kind {
			sum = sum.Add(p.AmountInches)
		}
	}
	return sum.Round(reportPrecision)
}

// AverageHigh returns the mean daily high, rounded to one decimal place.
// An empty sequence has no mean and yields ErrNoData.
func AverageHigh(obs []Temperature) (decimal.Decimal, error) {
	return averageOf(obs, func(t Temperature) decimal.Decimal { return t.TempHighF })
}

// AverageLow returns the mean daily low, rounded to one decimal place.
// An empty sequence has no mean and yields ErrNoData.
func AverageLow(obs []Temperature) (decimal.Decimal, error) {
	return averageOf(obs, func(t Temperature) decimal.Decimal { return t.TempLowF })
}

func averageOf(obs []Temperature, field func(Temperature) decimal.Decimal) (decimal.Decimal, error) {
	if len(obs) == 0 {
		return decimal.Zero, fmt.Errorf("%w: temperature average over empty window", ErrNoData)
	}

	sum := decimal.Zero
	for _, t := range obs {
		sum = sum.Add(field(t))
	}
	return sum.Div(decimal.NewFromInt(int64(len(obs)))).Round(reportPrecision), nil
}
