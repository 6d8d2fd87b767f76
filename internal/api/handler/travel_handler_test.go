package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

type stubWeatherService struct {
	gotCity string
	gotDays int
}

func (s *stubWeatherService) ForTrip(ctx context.Context, city, startDate, endDate string) (*domain.WeatherReport, error) {
	return nil, nil
}

func (s *stubWeatherService) City(ctx context.Context, city string, days int) (*ports.CityWeather, error) {
	s.gotCity, s.gotDays = city, days
	if city == "无名" {
		return nil, domain.ErrLocationNotFound
	}
	return &ports.CityWeather{Provider: "fake", Advice: []string{"2025-06-01: 夏装"}}, nil
}

type stubTrafficService struct{}

func (stubTrafficService) GuideText(ctx context.Context, origin, destination string) string {
	return origin + "→" + destination
}

func (stubTrafficService) Suggestions(ctx context.Context, origin, destination string) []domain.TravelSuggestion {
	return []domain.TravelSuggestion{{Mode: "高铁", Recommended: true}}
}

func (s stubTrafficService) Overview(ctx context.Context, origin, destination string) ports.RouteOverview {
	return ports.RouteOverview{
		Origin:      origin,
		Destination: destination,
		Suggestions: s.Suggestions(ctx, origin, destination),
		TrafficInfo: s.GuideText(ctx, origin, destination),
	}
}

type stubBookingService struct{ got domain.TripRequest }

func (s *stubBookingService) Info(ctx context.Context, req domain.TripRequest) *domain.BookingInfo {
	s.got = req
	return &domain.BookingInfo{Destination: req.Destination, Origin: req.Origin}
}

func (s *stubBookingService) Markdown(info *domain.BookingInfo) string {
	return "## 九、订票指南 🎫"
}

type stubPreferenceService struct{ prefs domain.Preferences }

func (s stubPreferenceService) Extract(ctx context.Context, text string, useLLM bool) (domain.Preferences, error) {
	return s.prefs, nil
}

func newTravelHandler() (*TravelHandler, *stubWeatherService, *stubBookingService) {
	w := &stubWeatherService{}
	b := &stubBookingService{}
	prefs := domain.Preferences{Hotel: &domain.HotelPreferences{Quiet: true}}
	return NewTravelHandler(w, stubTrafficService{}, b, stubPreferenceService{prefs: prefs}), w, b
}

func TestTravelHandler_Weather(t *testing.T) {
	h, w, _ := newTravelHandler()
	c, rec := newTestContext(http.MethodGet, "/v1/weather/北京?days=5", nil)
	c.SetParamNames("city")
	c.SetParamValues("北京")

	if err := h.Weather(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if w.gotCity != "北京" || w.gotDays != 5 {
		t.Fatalf("unexpected args: %s %d", w.gotCity, w.gotDays)
	}
	var out ports.CityWeather
	decodeData(t, rec, &out)
	if out.Provider != "fake" || len(out.Advice) != 1 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestTravelHandler_Route_RequiresBothEnds(t *testing.T) {
	h, _, _ := newTravelHandler()
	c, _ := newTestContext(http.MethodGet, "/v1/routes?origin=上海", nil)

	expectHTTPError(t, h.Route(c), http.StatusBadRequest)
}

func TestTravelHandler_Route(t *testing.T) {
	h, _, _ := newTravelHandler()
	c, rec := newTestContext(http.MethodGet, "/v1/routes?origin=上海&destination=北京", nil)

	if err := h.Route(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var out ports.RouteOverview
	decodeData(t, rec, &out)
	if out.TrafficInfo != "上海→北京" || len(out.Suggestions) != 1 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestTravelHandler_Booking_DefaultsOrigin(t *testing.T) {
	h, _, b := newTravelHandler()
	body := `{"destination":"成都","start_date":"2025-06-01","end_date":"2025-06-03","budget":3000}`
	c, rec := newTestContext(http.MethodPost, "/v1/bookings", strings.NewReader(body))

	if err := h.Booking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if b.got.Origin != "成都" {
		t.Fatalf("expected origin to default to destination, got %q", b.got.Origin)
	}
	var out bookingResponse
	decodeData(t, rec, &out)
	if !strings.HasPrefix(out.Markdown, "## 九、订票指南") {
		t.Fatalf("unexpected markdown: %q", out.Markdown)
	}
}

func TestTravelHandler_Booking_RejectsReversedDates(t *testing.T) {
	h, _, _ := newTravelHandler()
	body := `{"destination":"成都","start_date":"2025-06-05","end_date":"2025-06-03"}`
	c, _ := newTestContext(http.MethodPost, "/v1/bookings", strings.NewReader(body))

	if err := h.Booking(c); err != domain.ErrInvalidDates {
		t.Fatalf("expected ErrInvalidDates, got %v", err)
	}
}

func TestTravelHandler_ExtractPreferences_MergesSaved(t *testing.T) {
	h, _, _ := newTravelHandler()
	body := `{"text":"想住安静点","saved":{"meal":{"type":["本地特色"]}}}`
	c, rec := newTestContext(http.MethodPost, "/v1/preferences/extract", strings.NewReader(body))

	if err := h.ExtractPreferences(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var out extractResponse
	decodeData(t, rec, &out)
	if out.Preferences.Hotel == nil || !out.Preferences.Hotel.Quiet {
		t.Fatalf("extracted hotel preference lost: %+v", out.Preferences)
	}
	if out.Preferences.Meal == nil || len(out.Preferences.Meal.Type) != 1 {
		t.Fatalf("saved meal preference lost: %+v", out.Preferences)
	}
	if out.Text == "" || out.PromptSection == "" {
		t.Fatalf("expected rendered text and prompt section: %+v", out)
	}
}
