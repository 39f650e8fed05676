package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/geo"
)

// DegradeRecorder is told when a forecast failure is absorbed.
type DegradeRecorder interface {
	RecordWeatherDegraded(ctx context.Context)
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the forecast source.
	Provider ForecastProvider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics counts absorbed failures (optional).
	Metrics DegradeRecorder

	// Now overrides the clock (optional, for tests).
	Now func() time.Time
}

// Service assesses forecast weather at a destination. It holds no state
// between calls.
type Service struct {
	provider ForecastProvider
	logger   zerolog.Logger
	metrics  DegradeRecorder
	now      func() time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      now,
	}
}

// AssessForecast returns the assessment for the forecast hour that covers
// deadline. It never fails: any provider problem yields Unavailable.
func (s *Service) AssessForecast(ctx context.Context, location geo.Coordinate, deadline time.Time) Assessment {
	offset := HourOffset(s.now(), deadline)

	samples, err := s.provider.HourlyForecast(ctx, location, HoursToFetch(offset))
	if err == nil && len(samples) == 0 {
		err = ErrNoForecast
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("location", location.String()).
			Int("hour_offset", offset).
			Msg("weather forecast unavailable, assuming no delay")
		if s.metrics != nil {
			s.metrics.RecordWeatherDegraded(ctx)
		}
		return Unavailable
	}

	idx := min(offset, len(samples)-1)
	a := AssessSample(samples[idx])

	s.logger.Debug().
		Int("hour_offset", offset).
		Int("sample_index", idx).
		Str("summary", a.Summary).
		Int("extra_minutes", a.ExtraMinutes).
		Msg("weather assessed")

	return a
}
