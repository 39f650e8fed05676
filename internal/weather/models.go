// Package weather turns a weather signal into an extra-delay estimate.
//
// A signal is either a caller-chosen category label or an hourly forecast
// sample. Both end in the same Assessment: a fixed penalty in minutes and
// a summary label.
package weather

import (
	"context"
	"errors"
	"time"

	"github.com/leavetime/leavetime/internal/geo"
)

// Weather errors.
var (
	ErrNoForecast = errors.New("forecast returned no hourly samples")
)

// Category is a weather summary label.
type Category string

// Known categories in order of severity, then the degraded label.
const (
	CategoryClear       Category = "Clear"
	CategoryLightRain   Category = "Light rain"
	CategoryHeavyRain   Category = "Heavy rain"
	CategorySnowOrIce   Category = "Snow or ice"
	CategorySevere      Category = "Severe weather"
	CategoryUnavailable Category = "Weather unavailable"
)

// Assessment is the delay attributed to weather for one trip.
type Assessment struct {
	ExtraMinutes int
	Summary      string
}

// Unavailable is the assessment used when the forecast cannot be read.
var Unavailable = Assessment{ExtraMinutes: 0, Summary: string(CategoryUnavailable)}

// HourlySample is one hour of forecast. Any field may be empty.
type HourlySample struct {
	Time time.Time

	// ConditionText is the provider's free-text description, e.g. "Light rain showers".
	ConditionText string

	// PrecipitationType is the provider enum, e.g. "RAIN", "HEAVY_RAIN", "RAIN_AND_SNOW".
	PrecipitationType string

	// PrecipitationPercent is the chance of precipitation, 0-100.
	PrecipitationPercent int
}

// ForecastProvider returns up to hours consecutive hourly samples starting
// with the current hour.
type ForecastProvider interface {
	HourlyForecast(ctx context.Context, location geo.Coordinate, hours int) ([]HourlySample, error)
}
