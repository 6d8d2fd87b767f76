package domain

// DrivingRoute summarises the first path returned by the routing provider.
type DrivingRoute struct {
	DistanceKm    int `json:"distance_km"`
	DurationMin   int `json:"duration_min"`
	TollsCents    int `json:"tolls"`
	TrafficLights int `json:"traffic_lights"`
	Restriction   int `json:"restriction"`
}

// TrafficStatus is the congestion evaluation around a city centre.
type TrafficStatus struct {
	City            string  `json:"city"`
	CongestionIndex float64 `json:"congestion_index"`
	Level           string  `json:"congestion_level"`
	Speed           float64 `json:"speed"`
	Status          string  `json:"status"`
}

// TravelSuggestion is one way of getting from origin to destination.
type TravelSuggestion struct {
	Mode          string `json:"type"`
	Duration      string `json:"duration"`
	Cost          string `json:"cost"`
	EstimatedCost int    `json:"estimated_cost,omitempty"`
	DistanceKm    int    `json:"distance,omitempty"`
	Recommended   bool   `json:"recommended"`
}
