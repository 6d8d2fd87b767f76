package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const defaultCityDays = 3

// WeatherService resolves a city once through the geocoder and restricts the
// provider forecast to the requested range.
type WeatherService struct {
	geocoder ports.Geocoder
	provider ports.WeatherProvider
	log      zerolog.Logger
	now      func() time.Time
}

func NewWeatherService(geocoder ports.Geocoder, provider ports.WeatherProvider, log zerolog.Logger) *WeatherService {
	return &WeatherService{
		geocoder: geocoder,
		provider: provider,
		log:      log.With().Str("component", "weather").Logger(),
		now:      time.Now,
	}
}

// ForTrip returns the forecast for every date in [startDate, endDate] the
// provider can cover. Dates past the horizon are listed in Omitted.
func (s *WeatherService) ForTrip(ctx context.Context, city, startDate, endDate string) (*domain.WeatherReport, error) {
	req := domain.TripRequest{StartDate: startDate, EndDate: endDate}
	start, end, err := req.Dates()
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidDates
	}

	loc, err := s.geocoder.Lookup(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", city, err)
	}

	report := &domain.WeatherReport{
		City:      city,
		Provider:  s.provider.Name(),
		StartDate: startDate,
		EndDate:   endDate,
	}

	today := s.today()
	horizon := s.provider.HorizonDays()
	days := daysBetween(today, end) + 1
	if days > horizon {
		days = horizon
	}

	byDate := make(map[string]domain.DailyForecast)
	if days > 0 {
		forecast, err := s.provider.Forecast(ctx, *loc, days)
		if err != nil {
			return nil, fmt.Errorf("weather for %s: %w", city, err)
		}
		for _, d := range forecast {
			byDate[d.Date] = d
		}
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DateLayout)
		if f, ok := byDate[key]; ok {
			report.Days = append(report.Days, f)
		} else {
			report.Omitted = append(report.Omitted, key)
		}
	}

	if len(report.Omitted) > 0 {
		report.Warning = fmt.Sprintf("%s 仅支持 %d 天内预报，以下日期暂无数据: %s",
			s.provider.Name(), horizon, strings.Join(report.Omitted, ", "))
		s.log.Warn().Str("city", city).Strs("omitted", report.Omitted).Msg("dates beyond forecast horizon")
	}
	return report, nil
}

// City returns current conditions and a short forecast with clothing
// advice. A failed current-weather call only adds a warning.
func (s *WeatherService) City(ctx context.Context, city string, days int) (*ports.CityWeather, error) {
	horizon := s.provider.HorizonDays()
	if days <= 0 {
		days = defaultCityDays
	}
	if days > horizon {
		days = horizon
	}

	loc, err := s.geocoder.Lookup(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", city, err)
	}

	forecast, err := s.provider.Forecast(ctx, *loc, days)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", city, err)
	}

	out := &ports.CityWeather{
		Location: *loc,
		Provider: s.provider.Name(),
		Forecast: forecast,
		Advice:   make([]string, 0, len(forecast)),
	}
	for _, d := range forecast {
		out.Advice = append(out.Advice, d.Date+": "+domain.ClothingAdvice(d.TempMin, d.TempMax))
	}

	current, err := s.provider.Current(ctx, *loc)
	if err != nil {
		s.log.Warn().Err(err).Str("city", city).Msg("current weather unavailable")
		out.Warnings = append(out.Warnings, "实时天气暂不可用")
	} else {
		out.Current = current
	}
	return out, nil
}

func (s *WeatherService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
