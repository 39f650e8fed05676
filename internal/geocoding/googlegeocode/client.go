// Package googlegeocode implements geocoding.Geocoder on the Google Geocoding API.
package googlegeocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/geocoding"
	"github.com/leavetime/leavetime/internal/provider"
	"github.com/leavetime/leavetime/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "google-geocode"

	// DefaultBaseURL is the Google Maps web services base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	geocodePath = "/maps/api/geocode/json"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the geocoding client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient HTTPDoer
	Resilience resilience.Settings

	// Region is appended to addresses that do not mention it. Default: NY
	Region string

	Logger zerolog.Logger
}

// Client is a Google Geocoding API client.
type Client struct {
	apiKey     string
	baseURL    string
	region     string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var _ geocoding.Geocoder = (*Client)(nil)

// NewClient creates a new geocoding client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	region := cfg.Region
	if region == "" {
		region = "NY"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cfg.Resilience.NewClient(ProviderName)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		region:     region,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Resolve geocodes address, restricted to the US, and returns the first match.
func (c *Client) Resolve(ctx context.Context, address string) (geo.Coordinate, error) {
	query := geocoding.QualifyAddress(address, c.region)
	if query == "" {
		return geo.Coordinate{}, &provider.Error{
			Provider: ProviderName,
			Code:     "EMPTY_ADDRESS",
			Message:  "cannot geocode empty address",
			Err:      provider.ErrRejected,
		}
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("components", "country:US")
	params.Set("region", "us")
	params.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+geocodePath+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return geo.Coordinate{}, provider.Unreachable(ProviderName, err)
	}
	defer resp.Body.Close()

	if err := provider.CheckResponse(ProviderName, resp); err != nil {
		return geo.Coordinate{}, err
	}

	var out geocodeResponse
	if err := provider.DecodeJSON(ProviderName, resp, &out); err != nil {
		return geo.Coordinate{}, err
	}

	if out.Status != statusOK {
		return geo.Coordinate{}, statusError(out, query)
	}
	if len(out.Results) == 0 {
		return geo.Coordinate{}, provider.NoResults(ProviderName, "0 results for address="+query)
	}

	loc := out.Results[0].Geometry.Location
	coord := geo.Coordinate{Lat: loc.Lat, Lon: loc.Lng}

	c.logger.Debug().
		Str("address", query).
		Str("location", coord.String()).
		Msg("address geocoded")

	return coord, nil
}

// statusError maps a non-OK geocoding status to a provider error.
func statusError(out geocodeResponse, query string) error {
	msg := "status=" + out.Status
	if out.ErrorMessage != "" {
		msg += " error=" + out.ErrorMessage
	}
	msg += " address=" + query

	e := &provider.Error{Provider: ProviderName, Code: out.Status, Message: msg}
	switch out.Status {
	case statusZeroResults:
		e.Err = provider.ErrNoResults
	case statusOverQueryLimit:
		e.Err = provider.ErrRateLimited
	case statusUnknownError:
		e.Err = provider.ErrUnavailable
	default:
		e.Err = provider.ErrRejected
	}
	return e
}
