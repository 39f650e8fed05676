package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/api/middleware"
	"github.com/leavetime/leavetime/internal/api/models"
	"github.com/leavetime/leavetime/internal/api/response"
	"github.com/leavetime/leavetime/internal/places"
)

// MissingPlacesKeyMessage is the detail returned while the maps credential is unset.
const MissingPlacesKeyMessage = "Missing GOOGLE_MAPS_API_KEY"

// Suggester returns address suggestions. *places.Service implements it.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]places.Suggestion, error)
}

// PlacesHandler handles address autocomplete.
type PlacesHandler struct {
	suggester  Suggester
	configured bool
	logger     zerolog.Logger
}

// NewPlacesHandler creates a new PlacesHandler.
func NewPlacesHandler(suggester Suggester, configured bool, logger zerolog.Logger) *PlacesHandler {
	return &PlacesHandler{suggester: suggester, configured: configured, logger: logger}
}

// Suggest handles GET /api/places/suggest?q= - origin autocomplete.
// Provider failures answer with an empty list.
func (h *PlacesHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if places.ShortQuery(q) {
		response.JSON(w, r, http.StatusOK, models.SuggestionsResponse{Suggestions: []models.Suggestion{}})
		return
	}

	if !h.configured {
		response.ConfigurationError(w, r, MissingPlacesKeyMessage)
		return
	}

	found, err := h.suggester.Suggest(r.Context(), q)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("place suggestions unavailable")
		found = nil
	}

	out := make([]models.Suggestion, 0, len(found))
	for _, s := range found {
		out = append(out, models.Suggestion{ID: s.ID, Label: s.Label})
	}
	response.JSON(w, r, http.StatusOK, models.SuggestionsResponse{Suggestions: out})
}
