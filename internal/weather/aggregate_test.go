package weather

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrecipitationTotals(t *testing.T) {
	obs := []Precipitation{
		{WeatherType: WeatherRain, AmountInches: dec("1.2")},
		{WeatherType: WeatherRain, AmountInches: dec("0.3")},
		{WeatherType: WeatherSnow, AmountInches: dec("2.05")},
	}

	assert.True(t, TotalRain(obs).Equal(dec("1.5")), "rain = %s", TotalRain(obs))
	assert.True(t, TotalSnow(obs).Equal(dec("2.1")), "snow = %s", TotalSnow(obs))
}

func TestPrecipitationTotals_IgnoresOtherTypes(t *testing.T) {
	obs := []Precipitation{
		{WeatherType: WeatherRain, AmountInches: dec("0.4")},
		{WeatherType: "hail", AmountInches: dec("3")},
	}

	assert.Equal(t, "0.4", TotalRain(obs).String())
	assert.True(t, TotalSnow(obs).IsZero())
}

func TestPrecipitationTotals_Empty(t *testing.T) {
	assert.True(t, TotalRain(nil).IsZero())
	assert.True(t, TotalSnow([]Precipitation{}).IsZero())
}

func TestTotals_RoundHalfAwayFromZero(t *testing.T) {
	obs := []Precipitation{
		{WeatherType: WeatherRain, AmountInches: dec("0.25")},
		{WeatherType: WeatherSnow, AmountInches: dec("0.35")},
	}

	assert.Equal(t, "0.3", TotalRain(obs).String())
	assert.Equal(t, "0.4", TotalSnow(obs).String())
}

func TestTemperatureAverages(t *testing.T) {
	obs := []Temperature{
		{TempHighF: dec("70"), TempLowF: dec("50")},
		{TempHighF: dec("80"), TempLowF: dec("60")},
	}

	high, err := AverageHigh(obs)
	require.NoError(t, err)
	low, err := AverageLow(obs)
	require.NoError(t, err)

	assert.True(t, high.Equal(dec("75.0")), "high = %s", high)
	assert.True(t, low.Equal(dec("55.0")), "low = %s", low)
}

func TestTemperatureAverages_RoundsToOneDecimal(t *testing.T) {
	obs := []Temperature{
		{TempHighF: dec("70"), TempLowF: dec("50")},
		{TempHighF: dec("71"), TempLowF: dec("50")},
		{TempHighF: dec("71"), TempLowF: dec("51")},
	}

	high, err := AverageHigh(obs)
	require.NoError(t, err)
	low, err := AverageLow(obs)
	require.NoError(t, err)

	assert.Equal(t, "70.7", high.String())
	assert.Equal(t, "50.3", low.String())
}

func TestTemperatureAverages_Empty(t *testing.T) {
	_, err := AverageHigh(nil)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = AverageLow([]Temperature{})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestReducers_OrderIndependent(t *testing.T) {
	precip := []Precipitation{
		{WeatherType: WeatherRain, AmountInches: dec("0.15")},
		{WeatherType: WeatherSnow, AmountInches: dec("1.05")},
		{WeatherType: WeatherRain, AmountInches: dec("2.3")},
		{WeatherType: WeatherSnow, AmountInches: dec("0.01")},
	}
	temps := []Temperature{
		{TempHighF: dec("68.4"), TempLowF: dec("51.2")},
		{TempHighF: dec("72.9"), TempLowF: dec("49.9")},
		{TempHighF: dec("70.05"), TempLowF: dec("50.55")},
	}

	reversedPrecip := make([]Precipitation, len(precip))
	for i, p := range precip {
		reversedPrecip[len(precip)-1-i] = p
	}
	reversedTemps := make([]Temperature, len(temps))
	for i, tp := range temps {
		reversedTemps[len(temps)-1-i] = tp
	}

	assert.True(t, TotalRain(precip).Equal(TotalRain(reversedPrecip)))
	assert.True(t, TotalSnow(precip).Equal(TotalSnow(reversedPrecip)))

	high, err := AverageHigh(temps)
	require.NoError(t, err)
	reversedHigh, err := AverageHigh(reversedTemps)
	require.NoError(t, err)
	assert.True(t, high.Equal(reversedHigh))

	low, err := AverageLow(temps)
	require.NoError(t, err)
	reversedLow, err := AverageLow(reversedTemps)
	require.NoError(t, err)
	assert.True(t, low.Equal(reversedLow))
}

func TestValidateDays(t *testing.T) {
	for _, days := range []int{-1, 0, 31, 365} {
		assert.ErrorIs(t, ValidateDays(days), ErrInvalidRange, "days=%d", days)
	}
	for _, days := range []int{1, 7, 30} {
		assert.NoError(t, ValidateDays(days), "days=%d", days)
	}
}
