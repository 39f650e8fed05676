// Package geo holds the fixed geography of the service: coordinates, the
// supported airports, and the civil time zone arrival times are read in.
package geo

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone data for hosts without a system zoneinfo database
)

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// String returns the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lon)
}

// Valid reports whether the coordinate is within range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// AirportCode identifies a supported destination airport.
type AirportCode string

const (
	AirportJFK AirportCode = "JFK"
	AirportLGA AirportCode = "LGA"
	AirportEWR AirportCode = "EWR"
)

var airports = map[AirportCode]Coordinate{
	AirportJFK: {Lat: 40.6413111, Lon: -73.7781391},
	AirportLGA: {Lat: 40.7769271, Lon: -73.8739659},
	AirportEWR: {Lat: 40.6895314, Lon: -74.1744624},
}

// Airports returns the supported airport codes in display order.
func Airports() []AirportCode {
	return []AirportCode{AirportJFK, AirportLGA, AirportEWR}
}

// AirportLocation returns the fixed coordinate for an airport code.
func AirportLocation(code AirportCode) (Coordinate, bool) {
	c, ok := airports[code]
	return c, ok
}

// ZoneName is the civil time zone shared by all supported airports.
const ZoneName = "America/New_York"

// Zone returns the location arrival dates and times are interpreted in.
func Zone() *time.Location {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		// tzdata is embedded, so this only happens with a corrupted binary
		panic(fmt.Sprintf("geo: load %s: %v", ZoneName, err))
	}
	return loc
}
