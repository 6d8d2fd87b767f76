package domain

// FlightSuggestion mirrors the JSON objects the LLM is asked to return.
type FlightSuggestion struct {
	Airline        string `json:"airline"`
	FlightType     string `json:"flight_type"`
	EstimatedPrice string `json:"estimated_price"`
	BookingTips    string `json:"booking_tips"`
	BestTime       string `json:"best_time"`
}

type TrainSuggestion struct {
	TrainType          string `json:"train_type"`
	EstimatedPrice     string `json:"estimated_price"`
	Duration           string `json:"duration"`
	BookingTips        string `json:"booking_tips"`
	SeatRecommendation string `json:"seat_recommendation"`
}

type HotelSuggestion struct {
	HotelType      string `json:"hotel_type"`
	EstimatedPrice string `json:"estimated_price"`
	LocationTips   string `json:"location_tips"`
	BookingTips    string `json:"booking_tips"`
}

type BookingLink struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// BookingLinks groups official booking sites by category.
type BookingLinks struct {
	Flights []BookingLink `json:"flights"`
	Trains  []BookingLink `json:"trains"`
	Hotels  []BookingLink `json:"hotels"`
}

type TripDates struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"duration"`
}

// BookingInfo is the booking guidance for one trip. FlightsFallback is set
// when the LLM answer could not be parsed and generic advice was used.
type BookingInfo struct {
	Destination     string             `json:"destination"`
	Origin          string             `json:"origin"`
	Dates           TripDates          `json:"dates"`
	Flights         []FlightSuggestion `json:"flights"`
	Trains          []TrainSuggestion  `json:"trains"`
	Hotels          []HotelSuggestion  `json:"hotels"`
	Links           BookingLinks       `json:"booking_links"`
	Tips            []string           `json:"tips"`
	FlightsFallback bool               `json:"flights_fallback"`
	Warning         string             `json:"warning,omitempty"`
}
