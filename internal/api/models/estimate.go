package models

// EstimateRequest is the body of POST /api/trip/estimate.
type EstimateRequest struct {
	// PreviewWeather selects preview mode: only airport and arrival are read.
	PreviewWeather FlexBool `json:"previewWeather"`
	// UseWeatherAPI selects forecast weather in full mode.
	UseWeatherAPI FlexBool `json:"useWeatherApi"`

	Airport     FlexString `json:"airport"`
	ArrivalDate FlexString `json:"arrivalDate"`
	ArrivalTime FlexString `json:"arrivalTime"`

	FromAddressText FlexString `json:"fromAddressText"`
	FromAddress     FlexString `json:"fromAddress"`
	SelectedPlaceID FlexString `json:"selectedPlaceId"`

	TransportMode    FlexString `json:"transportMode"`
	CabBufferMinutes FlexInt    `json:"cabBufferMinutes"`
	WeatherCondition FlexString `json:"weatherCondition"`
}

// EstimateBreakdown itemizes a full estimate. TotalMinutes is the sum of the other three.
type EstimateBreakdown struct {
	BaseTravelMinutes   int    `json:"baseTravelMinutes"`
	CabBufferMinutes    int    `json:"cabBufferMinutes"`
	WeatherExtraMinutes int    `json:"weatherExtraMinutes"`
	WeatherSummary      string `json:"weatherSummary"`
	TotalMinutes        int    `json:"totalMinutes"`
}

// EstimateResponse is the full-mode result.
type EstimateResponse struct {
	RecommendedLeaveDateTime Timestamp         `json:"recommendedLeaveDateTime"`
	ArrivalDateTime          Timestamp         `json:"arrivalDateTime"`
	Breakdown                EstimateBreakdown `json:"breakdown"`
}

// WeatherBreakdown is the weather-only breakdown of a preview.
type WeatherBreakdown struct {
	WeatherExtraMinutes int    `json:"weatherExtraMinutes"`
	WeatherSummary      string `json:"weatherSummary"`
}

// PreviewResponse is the preview-mode result.
type PreviewResponse struct {
	ArrivalDateTime Timestamp        `json:"arrivalDateTime"`
	Breakdown       WeatherBreakdown `json:"breakdown"`
}
