// Package googleroutes implements routing.DurationProvider on the Google Routes API.
package googleroutes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/provider"
	"github.com/leavetime/leavetime/internal/provider/resilience"
	"github.com/leavetime/leavetime/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "google-routes"

	// DefaultBaseURL is the Google Routes API base URL.
	DefaultBaseURL = "https://routes.googleapis.com"

	computeRoutesPath = "/directions/v2:computeRoutes"
	fieldMask         = "routes.duration"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Routes client.
type ClientConfig struct {
	// APIKey is the Google Maps Platform key (required).
	APIKey string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, a resilient client is built from Resilience.
	HTTPClient HTTPDoer

	Resilience resilience.Settings

	// Logger for client operations.
	Logger zerolog.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time
}

// Client is a Google Routes API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	now        func() time.Time
}

var _ routing.DurationProvider = (*Client)(nil)

// NewClient creates a new Google Routes client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cfg.Resilience.NewClient(ProviderName)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Duration returns the traffic-aware driving time in minutes, rounded up.
func (c *Client) Duration(ctx context.Context, departAt time.Time, origin routing.Waypoint, destination geo.Coordinate) (int, error) {
	if err := origin.Validate(); err != nil {
		return 0, &provider.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin " + origin.String(),
			Err:      fmt.Errorf("%w: %w", provider.ErrRejected, err),
		}
	}
	if !destination.Valid() {
		return 0, &provider.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination " + destination.String(),
			Err:      provider.ErrRejected,
		}
	}

	body, err := json.Marshal(c.buildRequest(departAt, origin, destination))
	if err != nil {
		return 0, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+computeRoutesPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, provider.Unreachable(ProviderName, err)
	}
	defer resp.Body.Close()

	if err := provider.CheckResponse(ProviderName, resp); err != nil {
		return 0, err
	}

	var out computeRoutesResponse
	if err := provider.DecodeJSON(ProviderName, resp, &out); err != nil {
		return 0, err
	}
	if len(out.Routes) == 0 {
		return 0, provider.NoResults(ProviderName, "no routes returned")
	}

	d, err := time.ParseDuration(out.Routes[0].Duration)
	if err != nil {
		return 0, &provider.Error{
			Provider: ProviderName,
			Code:     "BAD_DURATION",
			Message:  fmt.Sprintf("unparseable route duration %q", out.Routes[0].Duration),
			Err:      fmt.Errorf("%w: %w", provider.ErrNoResults, err),
		}
	}

	minutes := routing.CeilMinutes(d)
	c.logger.Debug().
		Time("depart_at", departAt).
		Str("origin", origin.String()).
		Int("minutes", minutes).
		Msg("route duration")

	return minutes, nil
}

func (c *Client) buildRequest(departAt time.Time, origin routing.Waypoint, destination geo.Coordinate) computeRoutesRequest {
	req := computeRoutesRequest{
		Origin:            toWaypoint(origin),
		Destination:       toWaypoint(routing.LocationWaypoint(destination)),
		TravelMode:        "DRIVE",
		RoutingPreference: "TRAFFIC_AWARE",
	}
	// The API rejects departure times in the past; leaving it out means "now".
	if departAt.After(c.now()) {
		req.DepartureTime = departAt.UTC().Format(time.RFC3339Nano)
	}
	return req
}

func toWaypoint(w routing.Waypoint) waypoint {
	if w.PlaceID != "" {
		return waypoint{PlaceID: w.PlaceID}
	}
	return waypoint{Location: &location{LatLng: latLng{
		Latitude:  w.Location.Lat,
		Longitude: w.Location.Lon,
	}}}
}
