// Package routing defines how travel duration is looked up for a departure.
package routing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/leavetime/leavetime/internal/geo"
)

// ErrInvalidWaypoint indicates a waypoint with neither or both of a place id and a location.
var ErrInvalidWaypoint = errors.New("waypoint needs exactly one of place id or location")

// Waypoint is a route endpoint: either a provider place id or a coordinate.
type Waypoint struct {
	PlaceID  string
	Location *geo.Coordinate
}

// PlaceWaypoint returns a waypoint for a provider place id.
func PlaceWaypoint(placeID string) Waypoint {
	return Waypoint{PlaceID: placeID}
}

// LocationWaypoint returns a waypoint for a coordinate.
func LocationWaypoint(c geo.Coordinate) Waypoint {
	return Waypoint{Location: &c}
}

// Validate checks that exactly one form is set.
func (w Waypoint) Validate() error {
	if (w.PlaceID == "") == (w.Location == nil) {
		return ErrInvalidWaypoint
	}
	if w.Location != nil && !w.Location.Valid() {
		return ErrInvalidWaypoint
	}
	return nil
}

func (w Waypoint) String() string {
	if w.PlaceID != "" {
		return "place:" + w.PlaceID
	}
	if w.Location != nil {
		return w.Location.String()
	}
	return "<empty>"
}

// DurationProvider returns the predicted driving time, in whole minutes
// rounded up, for a departure at departAt.
type DurationProvider interface {
	Duration(ctx context.Context, departAt time.Time, origin Waypoint, destination geo.Coordinate) (int, error)
}

// DurationFunc adapts a function to DurationProvider.
type DurationFunc func(ctx context.Context, departAt time.Time, origin Waypoint, destination geo.Coordinate) (int, error)

// Duration calls f.
func (f DurationFunc) Duration(ctx context.Context, departAt time.Time, origin Waypoint, destination geo.Coordinate) (int, error) {
	return f(ctx, departAt, origin, destination)
}

// CeilMinutes rounds a duration up to whole minutes.
func CeilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
