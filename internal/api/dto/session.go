package dto

type CreateSessionRequest struct {
	Preset string `json:"preset"`
}

type SetLocationRequest struct {
	Value string `json:"value"`
}

type DesignatedEndRequest struct {
	Enabled bool `json:"enabled"`
}

type SessionResponse struct {
	ID                    string             `json:"id"`
	Locations             []string           `json:"locations"`
	Placeholders          []string           `json:"placeholders"`
	ValidCount            int                `json:"valid_count"`
	CountStatus           string             `json:"count_status"`
	MaxLocations          int                `json:"max_locations"`
	CanAdd                bool               `json:"can_add"`
	CanRemove             bool               `json:"can_remove"`
	DesignatedEnd         bool               `json:"designated_end"`
	SupportsDesignatedEnd bool               `json:"supports_designated_end"`
	EndPointPreview       string             `json:"end_point_preview,omitempty"`
	Loading               bool               `json:"loading"`
	State                 string             `json:"state"`
	Tips                  []string           `json:"tips"`
	Itinerary             *ItineraryResponse `json:"itinerary,omitempty"`
	Error                 string             `json:"error,omitempty"`
}
