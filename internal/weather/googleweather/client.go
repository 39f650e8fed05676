// Package googleweather implements weather.ForecastProvider on the Google Weather API.
package googleweather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/provider"
	"github.com/leavetime/leavetime/internal/provider/resilience"
	"github.com/leavetime/leavetime/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "google-weather"

	// DefaultBaseURL is the Google Weather API base URL.
	DefaultBaseURL = "https://weather.googleapis.com"

	hoursLookupPath = "/v1/forecast/hours:lookup"

	// MaxPages bounds the page requests of one forecast lookup, guarding
	// against a provider that never stops paging.
	MaxPages = 20
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Weather client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient HTTPDoer
	Resilience resilience.Settings

	// PageSize is the number of hours requested per page (optional).
	PageSize int

	Logger zerolog.Logger
}

// Client is a Google Weather API client.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var _ weather.ForecastProvider = (*Client)(nil)

// NewClient creates a new Google Weather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cfg.Resilience.NewClient(ProviderName)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		pageSize:   cfg.PageSize,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// HourlyForecast fetches hours of forecast starting at the current hour,
// following page tokens until enough samples are collected.
func (c *Client) HourlyForecast(ctx context.Context, location geo.Coordinate, hours int) ([]weather.HourlySample, error) {
	hours = min(weather.MaxForecastHours, max(1, hours))

	samples := make([]weather.HourlySample, 0, hours)
	pageToken := ""

	for page := 0; page < MaxPages; page++ {
		resp, err := c.fetchPage(ctx, location, hours, pageToken)
		if err != nil {
			return nil, err
		}

		for i := range resp.ForecastHours {
			samples = append(samples, toSample(&resp.ForecastHours[i]))
		}

		pageToken = resp.NextPageToken
		if len(samples) >= hours || pageToken == "" {
			break
		}
	}

	if len(samples) == 0 {
		return nil, provider.NoResults(ProviderName, "forecastHours is empty")
	}
	if len(samples) > hours {
		samples = samples[:hours]
	}

	c.logger.Debug().
		Str("location", location.String()).
		Int("requested", hours).
		Int("received", len(samples)).
		Msg("hourly forecast fetched")

	return samples, nil
}

func (c *Client) fetchPage(ctx context.Context, location geo.Coordinate, hours int, pageToken string) (*hoursLookupResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("location.latitude", strconv.FormatFloat(location.Lat, 'f', -1, 64))
	params.Set("location.longitude", strconv.FormatFloat(location.Lon, 'f', -1, 64))
	params.Set("hours", strconv.Itoa(hours))
	if c.pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(c.pageSize))
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+hoursLookupPath+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.Unreachable(ProviderName, err)
	}
	defer resp.Body.Close()

	if err := provider.CheckResponse(ProviderName, resp); err != nil {
		return nil, err
	}

	var out hoursLookupResponse
	if err := provider.DecodeJSON(ProviderName, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func toSample(h *forecastHour) weather.HourlySample {
	s := weather.HourlySample{}
	if h.Interval != nil {
		s.Time, _ = time.Parse(time.RFC3339, h.Interval.StartTime) //nolint:errcheck // zero time when absent
	}
	if h.WeatherCondition != nil && h.WeatherCondition.Description != nil {
		s.ConditionText = h.WeatherCondition.Description.Text
	}
	if h.Precipitation != nil && h.Precipitation.Probability != nil {
		s.PrecipitationType = h.Precipitation.Probability.Type
		s.PrecipitationPercent = h.Precipitation.Probability.Percent
	}
	return s
}
