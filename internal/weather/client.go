// Package weather fetches the short-term forecast and condenses it into the
// advisory consumed by the watering engine.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/Cknrf/intelligent-plant-care-system/internal/config"
	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

// blockCount is how many 3-hour forecast blocks the advisory needs.
const blockCount = 2

var (
	// ErrMissingAPIKey is returned before any network call when the
	// upstream credential is absent.
	ErrMissingAPIKey = errors.New("weather: missing api key")
	// errShortForecast means the payload did not contain both blocks.
	errShortForecast = errors.New("weather: forecast has fewer than 2 blocks")
)

// forecast payload, trimmed to the fields the advisory needs.
type forecastResponse struct {
	List []forecastBlock `json:"list"`
}

type forecastBlock struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		Volume3h float64 `json:"3h"`
	} `json:"rain"`
}

// Client fetches the two-block forecast from OpenWeatherMap. Transient
// failures retry on a fixed delay a bounded number of times; a breaker keeps
// a flapping upstream from being hammered between refresh periods.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	clock      hal.Clock

	baseURL    string
	apiKey     string
	lat, lon   string
	units      string
	retries    int
	retryDelay time.Duration
}

func NewClient(cfg config.WeatherConfig, clock hal.Clock) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "openweathermap",
			Timeout: cfg.RefreshInterval,
		}),
		clock:      clock,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		lat:        cfg.Latitude,
		lon:        cfg.Longitude,
		units:      cfg.Units,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
	}
}

// Fetch retrieves the forecast and returns a valid advisory, or an error and
// a zero advisory. Total retry time is bounded by retries × retryDelay plus
// the per-request timeout.
func (c *Client) Fetch(ctx context.Context) (models.WeatherAdvisory, error) {
	if c.apiKey == "" {
		return models.WeatherAdvisory{}, ErrMissingAPIKey
	}

	var blocks []forecastBlock
	op := func() error {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchOnce(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		blocks = out.([]forecastBlock)
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.retries-1))
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return models.WeatherAdvisory{}, err
	}
	return buildAdvisory(blocks, c.clock.NowMs())
}

func (c *Client) fetchOnce(ctx context.Context) ([]forecastBlock, error) {
	q := url.Values{}
	q.Set("lat", c.lat)
	q.Set("lon", c.lon)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	q.Set("cnt", fmt.Sprintf("%d", blockCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("weather: status %d: %s", resp.StatusCode, string(b))
	}

	var out forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("weather: decode: %w", err)
	}
	if len(out.List) < blockCount {
		return nil, errShortForecast
	}
	return out.List[:blockCount], nil
}

// buildAdvisory condenses the two blocks. Current conditions come from block
// 0 only. A block's rain volume counts only when its description indicates
// precipitation; rain6h accumulates both blocks.
func buildAdvisory(blocks []forecastBlock, nowMs uint32) (models.WeatherAdvisory, error) {
	if len(blocks) < blockCount {
		return models.WeatherAdvisory{}, errShortForecast
	}
	for _, b := range blocks {
		if len(b.Weather) == 0 {
			return models.WeatherAdvisory{}, errors.New("weather: block missing conditions")
		}
	}

	rain3h := rainVolume(blocks[0])
	adv := models.WeatherAdvisory{
		TemperatureC:    blocks[0].Main.Temp,
		HumidityPercent: blocks[0].Main.Humidity,
		Description:     blocks[0].Weather[0].Description,
		Rain3hMm:        rain3h,
		Rain6hMm:        rain3h + rainVolume(blocks[1]),
		FetchedAtMs:     nowMs,
		Valid:           true,
	}
	return adv, nil
}

func rainVolume(b forecastBlock) float64 {
	if len(b.Weather) == 0 || !describesRain(b.Weather[0].Description) {
		return 0
	}
	return b.Rain.Volume3h
}

func describesRain(description string) bool {
	d := strings.ToLower(description)
	return strings.Contains(d, "rain") ||
		strings.Contains(d, "drizzle") ||
		strings.Contains(d, "shower")
}
