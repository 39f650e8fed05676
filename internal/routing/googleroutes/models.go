package googleroutes

// Request and response shapes for directions/v2:computeRoutes.

type computeRoutesRequest struct {
	Origin            waypoint `json:"origin"`
	Destination       waypoint `json:"destination"`
	TravelMode        string   `json:"travelMode"`
	RoutingPreference string   `json:"routingPreference"`
	DepartureTime     string   `json:"departureTime,omitempty"`
}

type waypoint struct {
	PlaceID  string    `json:"placeId,omitempty"`
	Location *location `json:"location,omitempty"`
}

type location struct {
	LatLng latLng `json:"latLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type computeRoutesResponse struct {
	Routes []struct {
		// Duration is a protobuf duration string such as "2700s".
		Duration string `json:"duration"`
	} `json:"routes"`
}
