package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/cloud-weather/internal/weather"
)

// Endpoint locates an observation service.
type Endpoint struct {
	Protocol string
	Host     string
	Port     string
}

// URL returns the observation query URL for zip over the trailing days.
func (e Endpoint) URL(zip string, days int) string {
	return fmt.Sprintf("%s://%s:%s/observation/%s?days=%s",
		e.Protocol, e.Host, e.Port, url.PathEscape(zip), strconv.Itoa(days))
}

// ObservationClient implements weather.Source for one observation service.
type ObservationClient[T any] struct {
	name     string
	endpoint Endpoint
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	logger   *zap.SugaredLogger

	// emptyOnFailure reports transport and status failures as an empty
	// observation list instead of weather.ErrUpstreamUnavailable.
	emptyOnFailure bool
}

// ClientOptions holds settings shared by both observation clients.
type ClientOptions struct {
	Backoff        BackoffConfig
	EmptyOnFailure bool
}

// NewPrecipitationClient creates a client for the precipitation service.
func NewPrecipitationClient(client *http.Client, endpoint Endpoint, opts ClientOptions, logger *zap.SugaredLogger) *ObservationClient[weather.Precipitation] {
	return newObservationClient[weather.Precipitation]("precipitation", client, endpoint, opts, logger)
}

// NewTemperatureClient creates a client for the temperature service.
func NewTemperatureClient(client *http.Client, endpoint Endpoint, opts ClientOptions, logger *zap.SugaredLogger) *ObservationClient[weather.Temperature] {
	return newObservationClient[weather.Temperature]("temperature", client, endpoint, opts, logger)
}

func newObservationClient[T any](name string, client *http.Client, endpoint Endpoint, opts ClientOptions, logger *zap.SugaredLogger) *ObservationClient[T] {
	return &ObservationClient[T]{
		name:     name,
		endpoint: endpoint,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: opts.Backoff,
		},
		circuit:        newCircuitBreaker(name),
		logger:         logger,
		emptyOnFailure: opts.EmptyOnFailure,
	}
}

func (c *ObservationClient[T]) Name() string {
	return c.name
}

// Fetch returns the observations recorded for zip over the trailing days.
// days is not range-checked here; callers validate it.
func (c *ObservationClient[T]) Fetch(ctx context.Context, zip string, days int) ([]T, error) {
	endpoint := c.endpoint.URL(zip, days)

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	start := time.Now()
	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.emptyOnFailure {
			c.logger.Warnf("%s source failed for %s, treating as no data: %v", c.name, zip, err)
			return []T{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrUpstreamUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warnf("%s source body unreadable for %s: %v", c.name, zip, err)
		return []T{}, nil
	}

	var payload []T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			c.logger.Warnf("%s source body malformed for %s: %v", c.name, zip, err)
			return []T{}, nil
		}
	}
	if payload == nil {
		payload = []T{}
	}

	c.logger.Debugf("%s source returned %d observations for %s in %s", c.name, len(payload), zip, time.Since(start))
	return payload, nil
}
