package dto

type RouteStepResponse struct {
	Kind             string   `json:"kind"`
	LocationIndex    int      `json:"location_index"`
	Location         string   `json:"location"`
	LegSecondsToNext *float64 `json:"leg_seconds_to_next,omitempty"`
	LegToNext        string   `json:"leg_to_next,omitempty"`
}

type ItineraryResponse struct {
	DesignatedEnd    bool                `json:"designated_end"`
	Steps            []RouteStepResponse `json:"steps"`
	TotalTimeSeconds float64             `json:"total_time_seconds"`
	TotalTime        string              `json:"total_time"`
	LegSumSeconds    float64             `json:"leg_sum_seconds"`
}

type TripResponse struct {
	Name          string   `json:"name"`
	Locations     []string `json:"locations"`
	DesignatedEnd bool     `json:"designated_end"`
}

type ListTripsResponse struct {
	Trips []TripResponse `json:"trips"`
}
