// Package geocoding resolves free-text addresses to coordinates.
package geocoding

import (
	"context"
	"strings"

	"github.com/leavetime/leavetime/internal/geo"
)

// Geocoder resolves an address to a single coordinate.
// Implementations fail when the provider finds nothing.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (geo.Coordinate, error)
}

// GeocoderFunc adapts a function to Geocoder.
type GeocoderFunc func(ctx context.Context, address string) (geo.Coordinate, error)

// Resolve calls f.
func (f GeocoderFunc) Resolve(ctx context.Context, address string) (geo.Coordinate, error) {
	return f(ctx, address)
}

// QualifyAddress trims address and appends ", <region>" unless the text
// already mentions the region (case-insensitive substring match).
func QualifyAddress(address, region string) string {
	address = strings.TrimSpace(address)
	if region == "" || address == "" {
		return address
	}
	if strings.Contains(strings.ToLower(address), strings.ToLower(region)) {
		return address
	}
	return address + ", " + region
}
