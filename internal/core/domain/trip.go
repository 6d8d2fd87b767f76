package domain

import (
	"errors"
	"time"
)

// DateLayout is the calendar date format used by trip requests and forecasts.
const DateLayout = "2006-01-02"

var (
	ErrDestinationRequired = errors.New("destination is required")
	ErrInvalidDates        = errors.New("dates must be YYYY-MM-DD and end must not precede start")
	ErrInvalidBudget       = errors.New("budget must not be negative")
	ErrGuideNotFound       = errors.New("guide not found")
	ErrGenerationFailed    = errors.New("guide generation failed")
	ErrSuggestionRequired  = errors.New("suggestion is required")
)

// TripRequest is the immutable set of trip parameters submitted by a user.
type TripRequest struct {
	ID          string    `json:"request_id"`
	Destination string    `json:"destination"`
	Origin      string    `json:"origin"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Budget      float64   `json:"budget"`
	Preferences string    `json:"preferences"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the fields required before any vendor call is made and
// normalises Origin to Destination when it is empty.
func (r *TripRequest) Validate() error {
	if r.Destination == "" {
		return ErrDestinationRequired
	}
	if r.Budget < 0 {
		return ErrInvalidBudget
	}
	start, end, err := r.Dates()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return ErrInvalidDates
	}
	if r.Origin == "" {
		r.Origin = r.Destination
	}
	return nil
}

// Dates parses StartDate and EndDate.
func (r *TripRequest) Dates() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	return start, end, nil
}

// Days returns the trip length in nights, falling back to 3 when the dates
// cannot be parsed.
func (r *TripRequest) Days() int {
	start, end, err := r.Dates()
	if err != nil {
		return 3
	}
	return int(end.Sub(start).Hours() / 24)
}

// TripGuide is a generated itinerary. Content is only ever replaced whole.
type TripGuide struct {
	ID          string    `json:"guide_id"`
	RequestID   string    `json:"request_id"`
	Destination string    `json:"destination"`
	WeatherInfo string    `json:"weather_info,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReplaceContent swaps the guide body for content.
func (g *TripGuide) ReplaceContent(content string) {
	g.Content = content
}

// GuideResult is what the orchestration returns to the caller. Warning is
// set when the guide was produced but a follow-up step (persistence) failed.
type GuideResult struct {
	Success     bool     `json:"success"`
	GuideID     string   `json:"guide_id"`
	RequestID   string   `json:"request_id,omitempty"`
	Content     string   `json:"content"`
	WeatherInfo string   `json:"weather_info,omitempty"`
	TrafficInfo string   `json:"traffic_info,omitempty"`
	Warning     string   `json:"warning,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Usage       *Usage   `json:"usage,omitempty"`
}

// Usage reports LLM token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StoreStatus is the result of probing the persistence backend.
type StoreStatus struct {
	Token        bool   `json:"token"`
	RequestTable bool   `json:"request_table"`
	GuideTable   bool   `json:"guide_table"`
	UserTable    bool   `json:"user_table"`
	AllOK        bool   `json:"all_ok"`
	Error        string `json:"error,omitempty"`
}
