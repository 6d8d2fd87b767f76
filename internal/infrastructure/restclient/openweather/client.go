// Package openweather implements the OpenWeatherMap 2.5 current-weather and
// 5-day/3-hour forecast APIs.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

const (
	Name = "openweather"

	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	horizonDays  = 5
	slotsPerDay  = 8
	metricUnits  = "metric"
	chineseSimpl = "zh_cn"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Retry      restclient.RetryPolicy
	HTTPClient *http.Client
}

// Client implements ports.WeatherProvider and ports.Geocoder.
type Client struct {
	api *restclient.Client
	log zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		api: restclient.New(restclient.Config{
			Vendor:     Name,
			BaseURL:    cfg.BaseURL,
			Auth:       restclient.QueryKey{Param: "appid", Key: cfg.APIKey},
			Retry:      cfg.Retry,
			Success:    codOK,
			HTTPClient: cfg.HTTPClient,
		}, log),
		log: log.With().Str("component", Name).Logger(),
	}
}

func (c *Client) Name() string     { return Name }
func (c *Client) HorizonDays() int { return horizonDays }

type cityQuery struct {
	Q     string `url:"q"`
	Units string `url:"units"`
	Lang  string `url:"lang"`
}

type coordQuery struct {
	Lat   float64 `url:"lat"`
	Lon   float64 `url:"lon"`
	Cnt   int     `url:"cnt,omitempty"`
	Units string  `url:"units"`
	Lang  string  `url:"lang"`
}

type currentResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
}

// Lookup resolves a city through the current-weather endpoint, which is the
// only geocoding the 2.5 API offers. Names work best in English.
func (c *Client) Lookup(ctx context.Context, name string) (*domain.Location, error) {
	var out currentResponse
	err := c.api.DoJSON(ctx, restclient.Request{
		Path:  "/weather",
		Query: cityQuery{Q: name, Units: metricUnits, Lang: chineseSimpl},
	}, &out)
	if err != nil {
		var se *restclient.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, domain.ErrLocationNotFound
		}
		return nil, err
	}
	display := out.Name
	if display == "" {
		display = name
	}
	return &domain.Location{
		Name:        display,
		Coordinates: domain.Coordinates{Lng: out.Coord.Lon, Lat: out.Coord.Lat},
		Source:      Name,
	}, nil
}

type forecastSlot struct {
	Dt    int64  `json:"dt"`
	DtTxt string `json:"dt_txt"`
	Main  struct {
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c *Client) Forecast(ctx context.Context, loc domain.Location, days int) ([]domain.DailyForecast, error) {
	if days <= 0 || days > horizonDays {
		days = horizonDays
	}
	var out struct {
		List []forecastSlot `json:"list"`
		City struct {
			// Timezone is the shift from UTC in seconds.
			Timezone int `json:"timezone"`
		} `json:"city"`
	}
	err := c.api.DoJSON(ctx, restclient.Request{
		Path: "/forecast",
		Query: coordQuery{
			Lat: loc.Coordinates.Lat, Lon: loc.Coordinates.Lng,
			Cnt: days * slotsPerDay, Units: metricUnits, Lang: chineseSimpl,
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return aggregateDaily(out.List, time.FixedZone("", out.City.Timezone)), nil
}

// localDate returns the slot's calendar date in the city's zone. dt_txt is
// always UTC.
func (s forecastSlot) localDate(loc *time.Location) string {
	var at time.Time
	if s.Dt != 0 {
		at = time.Unix(s.Dt, 0)
	} else {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", s.DtTxt, time.UTC)
		if err != nil {
			return ""
		}
		at = t
	}
	return at.In(loc).Format(domain.DateLayout)
}

// aggregateDaily folds 3-hourly slots into per-day min/max by local date.
// The first slot of a day supplies its description, humidity and wind.
func aggregateDaily(slots []forecastSlot, loc *time.Location) []domain.DailyForecast {
	byDate := map[string]*domain.DailyForecast{}
	for _, s := range slots {
		date := s.localDate(loc)
		if date == "" {
			continue
		}
		day, ok := byDate[date]
		if !ok {
			desc := ""
			if len(s.Weather) > 0 {
				desc = s.Weather[0].Description
			}
			byDate[date] = &domain.DailyForecast{
				Date:      date,
				TempMin:   s.Main.TempMin,
				TempMax:   s.Main.TempMax,
				TextDay:   desc,
				TextNight: desc,
				Humidity:  fmt.Sprintf("%d", s.Main.Humidity),
				WindSpeed: s.Wind.Speed,
			}
			continue
		}
		if s.Main.TempMax > day.TempMax {
			day.TempMax = s.Main.TempMax
		}
		if s.Main.TempMin < day.TempMin {
			day.TempMin = s.Main.TempMin
		}
	}

	daily := make([]domain.DailyForecast, 0, len(byDate))
	for _, d := range byDate {
		daily = append(daily, *d)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	return daily
}

func (c *Client) Current(ctx context.Context, loc domain.Location) (*domain.CurrentWeather, error) {
	var out currentResponse
	err := c.api.DoJSON(ctx, restclient.Request{
		Path:  "/weather",
		Query: coordQuery{Lat: loc.Coordinates.Lat, Lon: loc.Coordinates.Lng, Units: metricUnits, Lang: chineseSimpl},
	}, &out)
	if err != nil {
		return nil, err
	}
	text := ""
	if len(out.Weather) > 0 {
		text = out.Weather[0].Description
	}
	return &domain.CurrentWeather{
		Temp:      out.Main.Temp,
		FeelsLike: out.Main.FeelsLike,
		Text:      text,
		WindScale: fmt.Sprintf("%.1fm/s", out.Wind.Speed),
		Humidity:  fmt.Sprintf("%d", out.Main.Humidity),
	}, nil
}

// codOK rejects bodies whose "cod" (number or string) is not 200.
func codOK(body []byte) error {
	var env struct {
		Cod     json.RawMessage `json:"cod"`
		Message any             `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &restclient.VendorError{Vendor: Name, Code: "malformed", Msg: err.Error()}
	}
	if len(env.Cod) == 0 {
		return nil
	}
	cod := strings.Trim(string(env.Cod), `"`)
	if cod != "200" {
		return &restclient.VendorError{Vendor: Name, Code: cod, Msg: fmt.Sprint(env.Message)}
	}
	return nil
}
