package trip

import (
	"strings"
	"time"

	"github.com/leavetime/leavetime/internal/geo"
)

// Input is the loosely typed field bag a caller submits.
type Input struct {
	Airport     string
	ArrivalDate string
	ArrivalTime string

	FromAddressText string
	// FromAddress is an older name for FromAddressText, used when it is blank.
	FromAddress     string
	SelectedPlaceID string

	TransportMode string
	// CabBufferMinutes is nil when the caller sent nothing usable.
	CabBufferMinutes *int

	UseWeatherAPI    bool
	WeatherCondition string
}

// TransportMode is how the traveler gets to the airport.
type TransportMode string

const (
	ModeSelf TransportMode = "self"
	ModeCab  TransportMode = "cab"
)

// WeatherSource selects where the weather signal comes from.
type WeatherSource int

const (
	WeatherManual WeatherSource = iota
	WeatherForecast
)

func (w WeatherSource) String() string {
	if w == WeatherForecast {
		return "forecast"
	}
	return "manual"
}

// Origin is where the trip starts. PlaceID wins over Address when both are set.
type Origin struct {
	PlaceID string
	Address string
}

func (o Origin) String() string {
	if o.PlaceID != "" {
		return "place:" + o.PlaceID
	}
	return "address:" + o.Address
}

// Request is a validated full estimate request.
type Request struct {
	Origin          Origin
	Airport         geo.AirportCode
	Destination     geo.Coordinate
	ArrivalDeadline time.Time

	TransportMode TransportMode
	// CabBufferMinutes is the effective buffer: zero unless TransportMode is ModeCab.
	CabBufferMinutes int

	WeatherSource WeatherSource
	// ManualWeather is the caller's category label when WeatherSource is WeatherManual.
	ManualWeather string
}

// PreviewRequest is a validated weather-only request.
type PreviewRequest struct {
	Airport         geo.AirportCode
	Destination     geo.Coordinate
	ArrivalDeadline time.Time
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
