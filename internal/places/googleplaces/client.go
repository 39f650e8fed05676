// Package googleplaces implements places.Autocompleter on the Google Places API (New).
package googleplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/places"
	"github.com/leavetime/leavetime/internal/provider"
	"github.com/leavetime/leavetime/internal/provider/resilience"
)

const (
	// ProviderName identifies this places provider.
	ProviderName = "google-places"

	// DefaultBaseURL is the Google Places API base URL.
	DefaultBaseURL = "https://places.googleapis.com"

	autocompletePath = "/v1/places:autocomplete"
	fieldMask        = "suggestions.placePrediction.placeId,suggestions.placePrediction.text.text"
)

// Street-level results only, so a suggestion is a usable route origin.
var primaryTypes = []string{"street_address", "premise", "subpremise"}

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Places client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient HTTPDoer
	Resilience resilience.Settings
	Logger     zerolog.Logger
}

// Client is a Google Places autocomplete client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var _ places.Autocompleter = (*Client)(nil)

// NewClient creates a new Google Places client.
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
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Autocomplete returns US street-level predictions for input.
// Predictions missing an id or a label are skipped.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]places.Suggestion, error) {
	body, err := json.Marshal(autocompleteRequest{
		Input:                input,
		IncludedPrimaryTypes: primaryTypes,
		IncludedRegionCodes:  []string{"US"},
		LanguageCode:         "en",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+autocompletePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.Unreachable(ProviderName, err)
	}
	defer resp.Body.Close()

	if err := provider.CheckResponse(ProviderName, resp); err != nil {
		return nil, err
	}

	var out autocompleteResponse
	if err := provider.DecodeJSON(ProviderName, resp, &out); err != nil {
		return nil, err
	}

	suggestions := make([]places.Suggestion, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		p := s.PlacePrediction
		if p == nil || p.PlaceID == "" || p.Text.Text == "" {
			continue
		}
		suggestions = append(suggestions, places.Suggestion{ID: p.PlaceID, Label: p.Text.Text})
	}

	c.logger.Debug().
		Int("input_len", len(input)).
		Int("suggestions", len(suggestions)).
		Msg("place suggestions fetched")

	return suggestions, nil
}
