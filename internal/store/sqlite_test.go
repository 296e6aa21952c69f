package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cloud-weather/internal/weather"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test_weather.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteSaveAndFindReport(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	now := time.Now().UTC()

	r := testReport("10001", 7, now)
	require.NoError(t, s.SaveReport(ctx, r))
	require.NoError(t, s.SaveReport(ctx, testReport("10001", 7, now.Add(-3*time.Hour))))

	got, err := s.FindReport(ctx, "10001", 7, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, r.CreatedOn.Equal(got.CreatedOn))
	assert.Equal(t, time.UTC, got.CreatedOn.Location())
	assert.True(t, r.AverageHighF.Equal(got.AverageHighF))
	assert.True(t, r.SnowTotalInches.Equal(got.SnowTotalInches))

	_, err = s.FindReport(ctx, "10001", 30, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListReports(ctx, "10001")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r.ID, list[0].ID)

	_, err = s.ListReports(ctx, "00000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLitePrecipitationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	obs := s.Precipitation()

	est := time.FixedZone("EST", -5*60*60)
	p := weather.Precipitation{
		ZipCode:      "10001",
		CreatedOn:    time.Date(2024, 1, 10, 8, 30, 0, 0, est),
		WeatherType:  weather.WeatherSnow,
		AmountInches: decimal.RequireFromString("2.05"),
	}.Normalize()
	require.NoError(t, obs.Add(ctx, p))

	got, err := obs.Since(ctx, "10001", p.CreatedOn.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, weather.WeatherSnow, got[0].WeatherType)
	assert.Equal(t, "2.05", got[0].AmountInches.String())
	assert.Equal(t, time.Date(2024, 1, 10, 13, 30, 0, 0, time.UTC), got[0].CreatedOn)

	got, err = obs.Since(ctx, "10001", p.CreatedOn)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteTemperatureRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	obs := s.Temperature()
	now := time.Now().UTC()

	for _, hi := range []string{"70", "80"} {
		require.NoError(t, obs.Add(ctx, weather.Temperature{
			ZipCode:   "10001",
			CreatedOn: now,
			TempHighF: decimal.RequireFromString(hi),
			TempLowF:  decimal.RequireFromString("50"),
		}.Normalize()))
	}

	got, err := obs.Since(ctx, "10001", now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)

	avg, err := weather.AverageHigh(got)
	require.NoError(t, err)
	assert.Equal(t, "75", avg.String())

	empty, err := obs.Since(ctx, "20002", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteDuplicateIDIsRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	r := testReport("10001", 7, time.Now())
	require.NoError(t, s.SaveReport(ctx, r))
	assert.Error(t, s.SaveReport(ctx, r))
}

func TestSQLitePing(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "ping.db"))
	require.NoError(t, err)

	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}

func TestSQLiteTimestampsOutsideNanosecondRange(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	obs := s.Temperature()

	early := time.Date(1600, 7, 4, 10, 0, 0, 123456789, time.UTC)
	late := time.Date(2500, 7, 4, 10, 0, 0, 0, time.UTC)
	for _, created := range []time.Time{late, early} {
		require.NoError(t, obs.Add(ctx, weather.Temperature{
			ZipCode:   "10001",
			CreatedOn: created,
			TempHighF: decimal.RequireFromString("70"),
			TempLowF:  decimal.RequireFromString("50"),
		}.Normalize()))
	}

	got, err := obs.Since(ctx, "10001", time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0].CreatedOn)
	assert.Equal(t, late, got[1].CreatedOn)

	got, err = obs.Since(ctx, "10001", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, late, got[0].CreatedOn)
}
