package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/cloud-weather/internal/observability"
	"github.com/i474232898/cloud-weather/internal/store"
	"github.com/i474232898/cloud-weather/internal/weather"
)

var testNow = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func newPrecipitationApp(t *testing.T) *fiber.App {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := weather.NewObservationService[weather.Precipitation](
		"precipitation",
		store.NewMemoryObservationStore[weather.Precipitation](),
		zap.NewNop().Sugar(),
		observability.NewMetrics(reg),
		clockwork.NewFakeClockAt(testNow),
	)
	app := NewApp("precipitation", reg)
	RegisterObservationRoutes(app, svc)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// TestObservationDaysValidation verifies that GET /observation enforces the 1-30 range for days.
func TestObservationDaysValidation(t *testing.T) {
	app := newPrecipitationApp(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", http.StatusBadRequest},
		{"?days=0", http.StatusBadRequest},
		{"?days=31", http.StatusBadRequest},
		{"?days=-3", http.StatusBadRequest},
		{"?days=abc", http.StatusBadRequest},
		{"?days=1", http.StatusOK},
		{"?days=30", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/observation/10001"+tt.query, nil))
			assert.Equal(t, tt.want, status, string(body))
		})
	}
}

func TestObservationGet_EmptyIsList(t *testing.T) {
	app := newPrecipitationApp(t)

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/observation/99999?days=7", nil))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestObservationPostThenGet_NormalizesToUTC(t *testing.T) {
	app := newPrecipitationApp(t)

	payload := `{"zipCode":"10001","createdOn":"2024-05-01T08:30:00-05:00","weatherType":"rain","amountInches":1.2}`
	req := httptest.NewRequest(http.MethodPost, "/observation", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	status, body := doRequest(t, app, req)
	require.Equal(t, http.StatusOK, status, string(body))

	var stored weather.Precipitation
	require.NoError(t, json.Unmarshal(body, &stored))
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC), stored.CreatedOn)
	assert.Equal(t, time.UTC, stored.CreatedOn.Location())

	status, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/observation/10001?days=1", nil))
	require.Equal(t, http.StatusOK, status)

	var listed []weather.Precipitation
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, stored.ID, listed[0].ID)
	assert.True(t, listed[0].CreatedOn.Equal(stored.CreatedOn))
	assert.Equal(t, weather.WeatherRain, listed[0].WeatherType)
	assert.Equal(t, "1.2", listed[0].AmountInches.String())
}

func TestObservationPost_InvalidBody(t *testing.T) {
	app := newPrecipitationApp(t)

	tests := map[string]string{
		"malformed json":   `{"zipCode":`,
		"missing zip code": `{"createdOn":"2024-05-01T08:30:00Z","weatherType":"snow","amountInches":2}`,
		"missing created":  `{"zipCode":"10001","weatherType":"snow","amountInches":2}`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/observation", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			status, body := doRequest(t, app, req)
			assert.Equal(t, http.StatusBadRequest, status)

			var errBody map[string]any
			require.NoError(t, json.Unmarshal(body, &errBody))
			assert.Equal(t, true, errBody["error"])
			assert.NotEmpty(t, errBody["message"])
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newPrecipitationApp(t)

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","service":"precipitation"}`, string(body))

	// Serve one observation so the counter has a sample.
	doRequest(t, app, httptest.NewRequest(http.MethodGet, "/observation/10001?days=3", nil))

	status, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "cloudweather_observations_served_total")
}

func TestHealth_FailingCheck(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("database is closed") }

	app := NewApp("report", prometheus.NewRegistry(), healthy, down)
	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.JSONEq(t, `{"status":"unavailable","service":"report","message":"database is closed"}`, string(body))

	app = NewApp("report", prometheus.NewRegistry(), healthy)
	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, status)
}
