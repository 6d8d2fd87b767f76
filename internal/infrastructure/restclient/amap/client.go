// Package amap implements the Amap (高德) geocoding, driving-route and
// traffic-status web services.
package amap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

const (
	Name           = "amap"
	DefaultBaseURL = "https://restapi.amap.com"

	StrategySpeed    = 0
	StrategyCost     = 1
	StrategyDistance = 2
)

type Config struct {
	APIKey     string
	BaseURL    string
	Retry      restclient.RetryPolicy
	HTTPClient *http.Client
}

// Client implements ports.RouteProvider and ports.Geocoder.
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
			Auth:       restclient.QueryKey{Param: "key", Key: cfg.APIKey},
			Retry:      cfg.Retry,
			Success:    statusOK,
			HTTPClient: cfg.HTTPClient,
		}, log),
		log: log.With().Str("component", Name).Logger(),
	}
}

type geocodeQuery struct {
	Address string `url:"address"`
	City    string `url:"city,omitempty"`
}

// Lookup geocodes a place name.
func (c *Client) Lookup(ctx context.Context, name string) (*domain.Location, error) {
	var out struct {
		Geocodes []struct {
			FormattedAddress flexString `json:"formatted_address"`
			Location         flexString `json:"location"`
			Adcode           flexString `json:"adcode"`
		} `json:"geocodes"`
	}
	err := c.api.DoJSON(ctx, restclient.Request{Path: "/v3/geocode/geo", Query: geocodeQuery{Address: name, City: name}}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Geocodes) == 0 {
		return nil, domain.ErrLocationNotFound
	}
	coords, ok := parseLngLat(string(out.Geocodes[0].Location))
	if !ok {
		return nil, domain.ErrLocationNotFound
	}
	return &domain.Location{
		Name:        name,
		ID:          string(out.Geocodes[0].Adcode),
		Coordinates: coords,
		Source:      Name,
	}, nil
}

type drivingQuery struct {
	Origin      string `url:"origin"`
	Destination string `url:"destination"`
	Strategy    int    `url:"strategy"`
	Extensions  string `url:"extensions"`
}

// DrivingRoute plans a car route and summarises its first path.
func (c *Client) DrivingRoute(ctx context.Context, from, to domain.Coordinates, strategy int) (*domain.DrivingRoute, error) {
	var out struct {
		Route struct {
			Paths []struct {
				Distance      flexNumber `json:"distance"`
				Duration      flexNumber `json:"duration"`
				Tolls         flexNumber `json:"tolls"`
				TrafficLights flexNumber `json:"traffic_lights"`
				Restriction   flexNumber `json:"restriction"`
			} `json:"paths"`
		} `json:"route"`
	}
	err := c.api.DoJSON(ctx, restclient.Request{
		Path: "/v3/direction/driving",
		Query: drivingQuery{
			Origin:      from.String(),
			Destination: to.String(),
			Strategy:    strategy,
			Extensions:  "all",
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Route.Paths) == 0 {
		return nil, &restclient.VendorError{Vendor: Name, Code: "no_path", Msg: "no driving path returned"}
	}
	p := out.Route.Paths[0]
	return &domain.DrivingRoute{
		DistanceKm:    int(p.Distance) / 1000,
		DurationMin:   int(p.Duration) / 60,
		TollsCents:    int(p.Tolls),
		TrafficLights: int(p.TrafficLights),
		Restriction:   int(p.Restriction),
	}, nil
}

type circleQuery struct {
	Center string `url:"center"`
	Radius int    `url:"radius"`
}

// TrafficAround evaluates congestion within radiusMeters of center. The
// endpoint needs a paid tier on many keys and fails with a vendor error
// otherwise.
func (c *Client) TrafficAround(ctx context.Context, center domain.Coordinates, radiusMeters int) (*domain.TrafficStatus, error) {
	var out struct {
		TrafficInfo struct {
			Evaluation struct {
				Index       flexNumber `json:"index"`
				Description flexString `json:"description"`
				Speed       flexNumber `json:"speed"`
				Status      flexString `json:"status"`
			} `json:"evaluation"`
		} `json:"trafficinfo"`
	}
	err := c.api.DoJSON(ctx, restclient.Request{
		Path:  "/v3/traffic/status/circle",
		Query: circleQuery{Center: center.String(), Radius: radiusMeters},
	}, &out)
	if err != nil {
		return nil, err
	}
	ev := out.TrafficInfo.Evaluation
	status := &domain.TrafficStatus{
		CongestionIndex: float64(ev.Index),
		Level:           string(ev.Description),
		Speed:           float64(ev.Speed),
		Status:          string(ev.Status),
	}
	if status.Level == "" {
		status.Level = "未知"
	}
	if status.Status == "" {
		status.Status = "未知"
	}
	return status, nil
}

// statusOK accepts bodies whose "status" is "1".
func statusOK(body []byte) error {
	var env struct {
		Status   string `json:"status"`
		Info     string `json:"info"`
		Infocode string `json:"infocode"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &restclient.VendorError{Vendor: Name, Code: "malformed", Msg: err.Error()}
	}
	if env.Status != "1" {
		return &restclient.VendorError{Vendor: Name, Code: env.Infocode, Msg: env.Info}
	}
	return nil
}

func parseLngLat(s string) (domain.Coordinates, bool) {
	lngStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, false
	}
	lng, err1 := strconv.ParseFloat(lngStr, 64)
	lat, err2 := strconv.ParseFloat(latStr, 64)
	if err1 != nil || err2 != nil {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lng: lng, Lat: lat}, true
}

// Amap encodes numbers as strings and empty values as []. flexNumber and
// flexString absorb both.

type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || b[0] == '[' || string(b) == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(f)
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = ""
	return nil
}
