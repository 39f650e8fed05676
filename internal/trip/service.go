// Package trip computes when to leave for an airport.
//
// A request is validated into a Request, a weather delay is assessed, and a
// bounded search over departure times finds the latest departure that still
// arrives before the deadline less cab and weather buffers.
package trip

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/geocoding"
	"github.com/leavetime/leavetime/internal/routing"
	"github.com/leavetime/leavetime/internal/weather"
)

const tracerName = "github.com/leavetime/leavetime/internal/trip"

// Estimate modes.
const (
	ModePreview = "preview"
	ModeFull    = "full"
)

// ForecastAssessor assesses forecast weather at a location and time. It must
// not fail; outages are reported as weather.Unavailable.
type ForecastAssessor interface {
	AssessForecast(ctx context.Context, location geo.Coordinate, deadline time.Time) weather.Assessment
}

// SearchRecorder receives per-search statistics.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, probes int, leaveNow bool)
}

// ServiceConfig holds configuration for the trip service.
type ServiceConfig struct {
	// Configured is false when the provider credential is missing. Every
	// call then fails with a ConfigurationError.
	Configured bool

	Durations routing.DurationProvider
	Geocoder  geocoding.Geocoder
	Weather   ForecastAssessor

	// Metrics records search statistics (optional).
	Metrics SearchRecorder

	// Tracer overrides the global tracer (optional).
	Tracer trace.Tracer

	Logger zerolog.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time
}

// ProviderCallBudget is the longest a full estimate can spend waiting on
// providers when each call takes at most perCall and the forecast lookup
// makes at most forecastCalls requests: one geocode, the forecast, and
// MaxProbes route lookups, all sequential. The search ignores client
// cancellation, so a server write deadline shorter than this can discard a
// finished estimate.
func ProviderCallBudget(perCall time.Duration, forecastCalls int) time.Duration {
	return perCall * time.Duration(1+forecastCalls+MaxProbes)
}

// Service is the estimate orchestrator. It holds no per-request state.
type Service struct {
	configured bool
	validator  *Validator
	searcher   *Searcher
	weather    ForecastAssessor
	metrics    SearchRecorder
	tracer     trace.Tracer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates a new trip service.
func NewService(cfg ServiceConfig) *Service {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		configured: cfg.Configured,
		validator:  NewValidator(),
		searcher:   NewSearcher(cfg.Durations, cfg.Geocoder, cfg.Logger),
		weather:    cfg.Weather,
		metrics:    cfg.Metrics,
		tracer:     tracer,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Configured reports whether the provider credential is present.
func (s *Service) Configured() bool {
	return s.configured
}

// Breakdown itemizes the minutes behind a recommendation.
type Breakdown struct {
	BaseTravelMinutes   int
	CabBufferMinutes    int
	WeatherExtraMinutes int
	WeatherSummary      string
	TotalMinutes        int
}

// Estimate is the result of a full estimate.
type Estimate struct {
	LeaveAt         time.Time
	ArrivalDeadline time.Time
	Breakdown       Breakdown
}

// Preview is the result of a weather-only estimate.
type Preview struct {
	ArrivalDeadline     time.Time
	WeatherExtraMinutes int
	WeatherSummary      string
}

// Estimate validates in, assesses weather and searches for the departure.
// Routing and geocoding failures are returned; weather failures are absorbed.
func (s *Service) Estimate(ctx context.Context, in Input) (_ *Estimate, err error) {
	ctx, span := s.tracer.Start(ctx, "trip.Estimate", trace.WithAttributes(
		attribute.String("trip.mode", ModeFull),
	))
	defer func() { endSpan(span, err) }()

	if !s.configured {
		return nil, &ConfigurationError{Err: ErrMissingCredential}
	}

	req, err := s.validator.Validate(in)
	if err != nil {
		return nil, err
	}

	var wx weather.Assessment
	if req.WeatherSource == WeatherForecast {
		wx = s.weather.AssessForecast(ctx, req.Destination, req.ArrivalDeadline)
	} else {
		wx = weather.AssessManual(req.ManualWeather)
	}

	fixed := req.CabBufferMinutes + wx.ExtraMinutes
	now := s.now()

	span.SetAttributes(
		attribute.String("trip.airport", string(req.Airport)),
		attribute.String("trip.transport_mode", string(req.TransportMode)),
		attribute.String("trip.weather_source", req.WeatherSource.String()),
		attribute.String("trip.weather_summary", wx.Summary),
		attribute.Int("trip.fixed_delay_minutes", fixed),
	)

	res, err := s.searcher.Search(ctx, SearchParams{
		Now:               now,
		Deadline:          req.ArrivalDeadline,
		FixedDelayMinutes: fixed,
		Origin:            req.Origin,
		Destination:       req.Destination,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("airport", string(req.Airport)).
			Str("origin", req.Origin.String()).
			Msg("estimate failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("trip.probes", res.Probes),
		attribute.Bool("trip.leave_now", res.LeaveNow),
		attribute.Bool("trip.fell_back", res.FellBack),
	)
	if s.metrics != nil {
		s.metrics.RecordSearch(ctx, res.Probes, res.LeaveNow)
	}

	est := &Estimate{
		LeaveAt:         res.LeaveAt,
		ArrivalDeadline: req.ArrivalDeadline,
		Breakdown: Breakdown{
			BaseTravelMinutes:   res.BaseTravelMinutes,
			CabBufferMinutes:    req.CabBufferMinutes,
			WeatherExtraMinutes: wx.ExtraMinutes,
			WeatherSummary:      wx.Summary,
			TotalMinutes:        res.BaseTravelMinutes + fixed,
		},
	}

	s.logger.Info().
		Str("airport", string(req.Airport)).
		Time("arrival", req.ArrivalDeadline).
		Time("leave_at", est.LeaveAt).
		Int("total_minutes", est.Breakdown.TotalMinutes).
		Int("probes", res.Probes).
		Bool("leave_now", res.LeaveNow).
		Msg("estimate computed")

	return est, nil
}

// Preview validates only the airport and arrival time and returns the
// forecast weather delay. It fails only on configuration or validation.
func (s *Service) Preview(ctx context.Context, in Input) (_ *Preview, err error) {
	ctx, span := s.tracer.Start(ctx, "trip.Estimate", trace.WithAttributes(
		attribute.String("trip.mode", ModePreview),
	))
	defer func() { endSpan(span, err) }()

	if !s.configured {
		return nil, &ConfigurationError{Err: ErrMissingCredential}
	}

	req, err := s.validator.ValidatePreview(in)
	if err != nil {
		return nil, err
	}

	wx := s.weather.AssessForecast(ctx, req.Destination, req.ArrivalDeadline)

	span.SetAttributes(
		attribute.String("trip.airport", string(req.Airport)),
		attribute.String("trip.weather_summary", wx.Summary),
	)

	return &Preview{
		ArrivalDeadline:     req.ArrivalDeadline,
		WeatherExtraMinutes: wx.ExtraMinutes,
		WeatherSummary:      wx.Summary,
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
