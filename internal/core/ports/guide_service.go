package ports

import (
	"context"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// GenerateInput is the DTO passed from the transport layer to GuideService.
type GenerateInput struct {
	Request        domain.TripRequest
	IncludeBooking bool
	Username       string
}

// OptimizeInput carries a revision instruction. Content is the prior guide
// text; when empty it is loaded by GuideID.
type OptimizeInput struct {
	GuideID    string
	Content    string
	Suggestion string
	Username   string
}

type GuideService interface {
	Generate(ctx context.Context, in GenerateInput) (*domain.GuideResult, error)
	Optimize(ctx context.Context, in OptimizeInput) (*domain.GuideResult, error)
	Pitfalls(ctx context.Context, destination, preferences string) (*domain.GuideResult, error)
	Get(ctx context.Context, guideID string) (*domain.TripGuide, error)
	ListRecent(ctx context.Context, limit int) ([]domain.TripGuide, error)
	ListRequests(ctx context.Context, limit int) ([]domain.TripRequest, error)
	StoreStatus(ctx context.Context) domain.StoreStatus
}

// CityWeather is the standalone weather view for one city.
type CityWeather struct {
	Location domain.Location        `json:"location"`
	Provider string                 `json:"provider"`
	Current  *domain.CurrentWeather `json:"current,omitempty"`
	Forecast []domain.DailyForecast `json:"forecast"`
	Advice   []string               `json:"clothing_advice"`
	Warnings []string               `json:"warnings,omitempty"`
}

type WeatherService interface {
	ForTrip(ctx context.Context, city, startDate, endDate string) (*domain.WeatherReport, error)
	City(ctx context.Context, city string, days int) (*CityWeather, error)
}

// RouteOverview combines travel suggestions with the traffic text block.
type RouteOverview struct {
	Origin      string                    `json:"origin"`
	Destination string                    `json:"destination"`
	Suggestions []domain.TravelSuggestion `json:"suggestions"`
	TrafficInfo string                    `json:"traffic_info"`
}

type TrafficService interface {
	GuideText(ctx context.Context, origin, destination string) string
	Suggestions(ctx context.Context, origin, destination string) []domain.TravelSuggestion
	Overview(ctx context.Context, origin, destination string) RouteOverview
}

type BookingService interface {
	Info(ctx context.Context, req domain.TripRequest) *domain.BookingInfo
	Markdown(info *domain.BookingInfo) string
}

type PreferenceService interface {
	Extract(ctx context.Context, text string, useLLM bool) (domain.Preferences, error)
}
