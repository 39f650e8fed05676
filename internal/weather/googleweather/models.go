package googleweather

// Response shape for forecast/hours:lookup. Only the fields used for
// delay classification are decoded.

type hoursLookupResponse struct {
	ForecastHours []forecastHour `json:"forecastHours"`
	NextPageToken string         `json:"nextPageToken"`
}

type forecastHour struct {
	Interval *struct {
		StartTime string `json:"startTime"`
	} `json:"interval"`

	WeatherCondition *struct {
		Description *struct {
			Text string `json:"text"`
		} `json:"description"`
		Type string `json:"type"`
	} `json:"weatherCondition"`

	Precipitation *struct {
		Probability *struct {
			Percent int    `json:"percent"`
			Type    string `json:"type"`
		} `json:"probability"`
	} `json:"precipitation"`
}
