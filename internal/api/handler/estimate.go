// Package handler provides HTTP handlers for the leave-time API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/api/middleware"
	"github.com/leavetime/leavetime/internal/api/models"
	"github.com/leavetime/leavetime/internal/api/response"
	"github.com/leavetime/leavetime/internal/provider"
	"github.com/leavetime/leavetime/internal/trip"
)

// MissingEstimateKeyMessage is the detail returned while the maps credential is unset.
const MissingEstimateKeyMessage = "Missing GOOGLE_MAPS_API_KEY env var on server"

// TripService computes estimates. *trip.Service implements it.
type TripService interface {
	Configured() bool
	Estimate(ctx context.Context, in trip.Input) (*trip.Estimate, error)
	Preview(ctx context.Context, in trip.Input) (*trip.Preview, error)
}

// EstimateHandler handles the trip estimate endpoint.
type EstimateHandler struct {
	trips  TripService
	logger zerolog.Logger
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(trips TripService, logger zerolog.Logger) *EstimateHandler {
	return &EstimateHandler{trips: trips, logger: logger}
}

// Estimate handles POST /api/trip/estimate - full or preview estimate.
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if !h.trips.Configured() {
		response.ConfigurationError(w, r, MissingEstimateKeyMessage)
		return
	}

	var body models.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.PayloadTooLarge(w, r, "request body too large")
			return
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	in := toInput(body)

	if body.PreviewWeather {
		preview, err := h.trips.Preview(r.Context(), in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		response.JSON(w, r, http.StatusOK, models.PreviewResponse{
			ArrivalDateTime: models.Timestamp(preview.ArrivalDeadline),
			Breakdown: models.WeatherBreakdown{
				WeatherExtraMinutes: preview.WeatherExtraMinutes,
				WeatherSummary:      preview.WeatherSummary,
			},
		})
		return
	}

	est, err := h.trips.Estimate(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.EstimateResponse{
		RecommendedLeaveDateTime: models.Timestamp(est.LeaveAt),
		ArrivalDateTime:          models.Timestamp(est.ArrivalDeadline),
		Breakdown: models.EstimateBreakdown{
			BaseTravelMinutes:   est.Breakdown.BaseTravelMinutes,
			CabBufferMinutes:    est.Breakdown.CabBufferMinutes,
			WeatherExtraMinutes: est.Breakdown.WeatherExtraMinutes,
			WeatherSummary:      est.Breakdown.WeatherSummary,
			TotalMinutes:        est.Breakdown.TotalMinutes,
		},
	})
}

func toInput(body models.EstimateRequest) trip.Input {
	return trip.Input{
		Airport:          string(body.Airport),
		ArrivalDate:      string(body.ArrivalDate),
		ArrivalTime:      string(body.ArrivalTime),
		FromAddressText:  string(body.FromAddressText),
		FromAddress:      string(body.FromAddress),
		SelectedPlaceID:  string(body.SelectedPlaceID),
		TransportMode:    string(body.TransportMode),
		CabBufferMinutes: body.CabBufferMinutes.Ptr(),
		UseWeatherAPI:    bool(body.UseWeatherAPI),
		WeatherCondition: string(body.WeatherCondition),
	}
}

func (h *EstimateHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *trip.ValidationError
		cerr *trip.ConfigurationError
		perr *provider.Error
	)

	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, r, verr.Field, verr.Message)
	case errors.As(err, &cerr):
		response.ConfigurationError(w, r, MissingEstimateKeyMessage)
	case errors.As(err, &perr):
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("provider", perr.Provider).
			Str("code", perr.Code).
			Msg("estimate provider call failed")
		response.BadGateway(w, r, "estimate failed: "+perr.Provider+" "+perr.Message)
	default:
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("estimate failed")
		response.InternalError(w, r, "estimate failed")
	}
}
