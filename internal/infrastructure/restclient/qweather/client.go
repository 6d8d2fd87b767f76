// Package qweather implements the QWeather (和风天气) city lookup and
// forecast APIs.
package qweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

const (
	Name = "qweather"

	DefaultGeoURL = "https://geoapi.qweather.com"
	DefaultAPIURL = "https://devapi.qweather.com"

	horizonDays = 7
)

type Config struct {
	APIKey     string
	GeoURL     string
	APIURL     string
	Retry      restclient.RetryPolicy
	HTTPClient *http.Client
}

// Client implements ports.WeatherProvider and ports.Geocoder.
type Client struct {
	geo *restclient.Client
	api *restclient.Client
	log zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.GeoURL == "" {
		cfg.GeoURL = DefaultGeoURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	auth := restclient.QueryKey{Param: "key", Key: cfg.APIKey}
	return &Client{
		geo: restclient.New(restclient.Config{
			Vendor: Name, BaseURL: cfg.GeoURL, Auth: auth, Retry: cfg.Retry,
			Success: codeOK, HTTPClient: cfg.HTTPClient,
		}, log),
		api: restclient.New(restclient.Config{
			Vendor: Name, BaseURL: cfg.APIURL, Auth: auth, Retry: cfg.Retry,
			Success: codeOK, HTTPClient: cfg.HTTPClient,
		}, log),
		log: log.With().Str("component", Name).Logger(),
	}
}

func (c *Client) Name() string     { return Name }
func (c *Client) HorizonDays() int { return horizonDays }

type locationQuery struct {
	Location string `url:"location"`
}

// Lookup resolves a city name to a QWeather location id.
func (c *Client) Lookup(ctx context.Context, name string) (*domain.Location, error) {
	var out struct {
		Location []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
			Lat  string `json:"lat"`
			Lon  string `json:"lon"`
		} `json:"location"`
	}
	err := c.geo.DoJSON(ctx, restclient.Request{Path: "/v2/city/lookup", Query: locationQuery{Location: name}}, &out)
	if err != nil {
		var ve *restclient.VendorError
		if errors.As(err, &ve) && ve.Code == "404" {
			return nil, domain.ErrLocationNotFound
		}
		return nil, err
	}
	if len(out.Location) == 0 {
		return nil, domain.ErrLocationNotFound
	}
	first := out.Location[0]
	return &domain.Location{
		Name: first.Name,
		ID:   first.ID,
		Coordinates: domain.Coordinates{
			Lng: parseFloat(first.Lon),
			Lat: parseFloat(first.Lat),
		},
		Source: Name,
	}, nil
}

type dailyItem struct {
	FxDate       string `json:"fxDate"`
	TempMax      string `json:"tempMax"`
	TempMin      string `json:"tempMin"`
	TextDay      string `json:"textDay"`
	TextNight    string `json:"textNight"`
	WindDirDay   string `json:"windDirDay"`
	WindScaleDay string `json:"windScaleDay"`
	WindSpeedDay string `json:"windSpeedDay"`
	Humidity     string `json:"humidity"`
	Precip       string `json:"precip"`
}

// Forecast returns up to days daily forecasts starting today.
func (c *Client) Forecast(ctx context.Context, loc domain.Location, days int) ([]domain.DailyForecast, error) {
	if days <= 0 || days > horizonDays {
		days = horizonDays
	}
	path := "/v7/weather/7d"
	if days <= 3 {
		path = "/v7/weather/3d"
	}

	var out struct {
		Daily []dailyItem `json:"daily"`
	}
	if err := c.api.DoJSON(ctx, restclient.Request{Path: path, Query: locationQuery{Location: locationParam(loc)}}, &out); err != nil {
		return nil, err
	}

	forecasts := make([]domain.DailyForecast, 0, len(out.Daily))
	for i, d := range out.Daily {
		if i >= days {
			break
		}
		forecasts = append(forecasts, domain.DailyForecast{
			Date:      d.FxDate,
			TempMin:   parseFloat(d.TempMin),
			TempMax:   parseFloat(d.TempMax),
			TextDay:   d.TextDay,
			TextNight: d.TextNight,
			WindDir:   d.WindDirDay,
			WindScale: d.WindScaleDay,
			WindSpeed: parseFloat(d.WindSpeedDay),
			Humidity:  d.Humidity,
			Precip:    d.Precip,
		})
	}
	return forecasts, nil
}

func (c *Client) Current(ctx context.Context, loc domain.Location) (*domain.CurrentWeather, error) {
	var out struct {
		Now struct {
			Temp      string `json:"temp"`
			FeelsLike string `json:"feelsLike"`
			Text      string `json:"text"`
			WindDir   string `json:"windDir"`
			WindScale string `json:"windScale"`
			Humidity  string `json:"humidity"`
			Precip    string `json:"precip"`
		} `json:"now"`
	}
	if err := c.api.DoJSON(ctx, restclient.Request{Path: "/v7/weather/now", Query: locationQuery{Location: locationParam(loc)}}, &out); err != nil {
		return nil, err
	}
	return &domain.CurrentWeather{
		Temp:      parseFloat(out.Now.Temp),
		FeelsLike: parseFloat(out.Now.FeelsLike),
		Text:      out.Now.Text,
		WindDir:   out.Now.WindDir,
		WindScale: out.Now.WindScale,
		Humidity:  out.Now.Humidity,
		Precip:    out.Now.Precip,
	}, nil
}

// locationParam prefers the QWeather id and falls back to "lon,lat" with
// two decimals, which the API also accepts.
func locationParam(loc domain.Location) string {
	if loc.ID != "" && loc.Source == Name {
		return loc.ID
	}
	return fmt.Sprintf("%.2f,%.2f", loc.Coordinates.Lng, loc.Coordinates.Lat)
}

// codeOK accepts bodies whose "code" is "200". QWeather reports errors in a
// 200 response with codes such as "204", "401" or "404".
func codeOK(body []byte) error {
	var env struct {
		Code json.RawMessage `json:"code"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &restclient.VendorError{Vendor: Name, Code: "malformed", Msg: err.Error()}
	}
	code := strings.Trim(string(env.Code), `"`)
	if code != "200" {
		return &restclient.VendorError{Vendor: Name, Code: code, Msg: "qweather returned code " + code}
	}
	return nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
