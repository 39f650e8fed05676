package trip

import (
	"strings"
	"time"

	"github.com/leavetime/leavetime/internal/geo"
)

var (
	dateLayouts   = []string{"01-02-2006", "1-2-2006"}
	time12Layouts = []string{"3:04 PM", "3:04PM"}
	time24Layout  = "15:04"
)

// Validator turns an Input into a Request. Rules run in a fixed order and
// the first failure is returned.
type Validator struct {
	loc *time.Location
}

// NewValidator creates a validator that reads arrival times in the airports' zone.
func NewValidator() *Validator {
	return &Validator{loc: geo.Zone()}
}

// Validate checks every field of a full estimate request.
func (v *Validator) Validate(in Input) (Request, error) {
	code, dest, err := validateAirport(in.Airport)
	if err != nil {
		return Request{}, err
	}

	deadline, err := v.parseArrival(in.ArrivalDate, in.ArrivalTime)
	if err != nil {
		return Request{}, err
	}

	mode := TransportMode(strings.TrimSpace(in.TransportMode))
	if mode != ModeSelf && mode != ModeCab {
		return Request{}, invalid("transportMode", "transportMode must be self or cab")
	}

	if in.CabBufferMinutes == nil || *in.CabBufferMinutes < 0 {
		return Request{}, invalid("cabBufferMinutes", "cabBufferMinutes must be >= 0")
	}
	cab := 0
	if mode == ModeCab {
		cab = *in.CabBufferMinutes
	}

	source := WeatherManual
	manual := ""
	if in.UseWeatherAPI {
		source = WeatherForecast
	} else {
		manual = in.WeatherCondition
		if strings.TrimSpace(manual) == "" {
			return Request{}, invalid("weatherCondition", "weatherCondition is required when useWeatherApi=false")
		}
	}

	origin := Origin{PlaceID: strings.TrimSpace(in.SelectedPlaceID)}
	if origin.PlaceID == "" {
		origin.Address = firstNonBlank(in.FromAddressText, in.FromAddress)
		if origin.Address == "" {
			return Request{}, invalid("fromAddressText", "fromAddressText is required")
		}
	}

	return Request{
		Origin:           origin,
		Airport:          code,
		Destination:      dest,
		ArrivalDeadline:  deadline,
		TransportMode:    mode,
		CabBufferMinutes: cab,
		WeatherSource:    source,
		ManualWeather:    manual,
	}, nil
}

// ValidatePreview checks only the airport and the arrival date and time.
func (v *Validator) ValidatePreview(in Input) (PreviewRequest, error) {
	code, dest, err := validateAirport(in.Airport)
	if err != nil {
		return PreviewRequest{}, err
	}
	deadline, err := v.parseArrival(in.ArrivalDate, in.ArrivalTime)
	if err != nil {
		return PreviewRequest{}, err
	}
	return PreviewRequest{Airport: code, Destination: dest, ArrivalDeadline: deadline}, nil
}

func validateAirport(raw string) (geo.AirportCode, geo.Coordinate, error) {
	code := geo.AirportCode(strings.TrimSpace(raw))
	dest, ok := geo.AirportLocation(code)
	if !ok {
		return "", geo.Coordinate{}, invalid("airport", "airport must be JFK, LGA, or EWR")
	}
	return code, dest, nil
}

// parseArrival reads MM-DD-YYYY (or with slashes) and either H:MM or h:mm AM/PM.
func (v *Validator) parseArrival(date, clock string) (time.Time, error) {
	d := strings.ReplaceAll(strings.TrimSpace(date), "/", "-")
	t := strings.ToUpper(strings.TrimSpace(clock))
	if d == "" {
		return time.Time{}, invalid("arrivalDate", "invalid arrival date/time")
	}
	if t == "" {
		return time.Time{}, invalid("arrivalTime", "invalid arrival date/time")
	}

	day, ok := parseFirst(dateLayouts, d, time.UTC)
	if !ok {
		return time.Time{}, invalid("arrivalDate", "invalid arrival date/time")
	}

	layouts := []string{time24Layout}
	if strings.Contains(t, "AM") || strings.Contains(t, "PM") {
		layouts = time12Layouts
	}
	tod, ok := parseFirst(layouts, t, time.UTC)
	if !ok {
		return time.Time{}, invalid("arrivalTime", "invalid arrival date/time")
	}

	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, v.loc), nil
}

func parseFirst(layouts []string, value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
