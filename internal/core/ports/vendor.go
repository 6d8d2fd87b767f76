package ports

import (
	"context"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is one chat-completion call. Zero values fall back to
// the client defaults.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

type Completion struct {
	Content string
	Model   string
	Usage   domain.Usage
}

// LLM drafts text from a conversation.
type LLM interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// Geocoder resolves a place name. It returns domain.ErrLocationNotFound when
// the name is unknown to the source.
type Geocoder interface {
	Lookup(ctx context.Context, name string) (*domain.Location, error)
}

// WeatherProvider is one forecast vendor. HorizonDays is the furthest day
// ahead the provider can forecast.
type WeatherProvider interface {
	Name() string
	HorizonDays() int
	Forecast(ctx context.Context, loc domain.Location, days int) ([]domain.DailyForecast, error)
	Current(ctx context.Context, loc domain.Location) (*domain.CurrentWeather, error)
}

// RouteProvider plans driving routes and reports live traffic.
type RouteProvider interface {
	DrivingRoute(ctx context.Context, from, to domain.Coordinates, strategy int) (*domain.DrivingRoute, error)
	TrafficAround(ctx context.Context, center domain.Coordinates, radiusMeters int) (*domain.TrafficStatus, error)
}
