package qweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey: "qw-key",
		GeoURL: srv.URL,
		APIURL: srv.URL,
		Retry:  restclient.RetryPolicy{Attempts: 1},
	}, zerolog.Nop())
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/city/lookup" || r.URL.Query().Get("key") != "qw-key" || r.URL.Query().Get("location") != "北京" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"code":"200","location":[{"name":"北京","id":"101010100","lat":"39.90499","lon":"116.40529"}]}`))
	})

	loc, err := c.Lookup(context.Background(), "北京")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.ID != "101010100" || loc.Source != Name || loc.Coordinates.Lat < 39.9 {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestLookup_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"404"}`))
	})
	if _, err := c.Lookup(context.Background(), "不存在"); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestForecast_ParsesDaily(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v7/weather/7d" || r.URL.Query().Get("location") != "101010100" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"code":"200","daily":[
			{"fxDate":"2025-06-01","tempMax":"31","tempMin":"19","textDay":"晴","textNight":"多云","windDirDay":"南风","windScaleDay":"1-3","humidity":"40","precip":"0.0"},
			{"fxDate":"2025-06-02","tempMax":"29","tempMin":"18","textDay":"多云","textNight":"多云"}]}`))
	})

	days, err := c.Forecast(context.Background(), domain.Location{ID: "101010100", Source: Name}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 || days[0].TempMax != 31 || days[0].TempMin != 19 || days[0].WindDir != "南风" {
		t.Fatalf("unexpected forecast %+v", days)
	}
}

func TestForecast_UsesCoordinatesForForeignLocations(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("location")
		_, _ = w.Write([]byte(`{"code":"200","daily":[]}`))
	})

	loc := domain.Location{Name: "上海", Coordinates: domain.Coordinates{Lng: 121.473701, Lat: 31.230416}, Source: "static"}
	if _, err := c.Forecast(context.Background(), loc, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "121.47,31.23" {
		t.Fatalf("unexpected location param %q", got)
	}
}

func TestCurrent_VendorCodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"401"}`))
	})
	_, err := c.Current(context.Background(), domain.Location{ID: "1", Source: Name})
	var ve *restclient.VendorError
	if !errors.As(err, &ve) || ve.Code != "401" {
		t.Fatalf("expected vendor error 401, got %v", err)
	}
}

func TestCurrent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"200","now":{"temp":"24","feelsLike":"25","text":"晴","windDir":"东风","windScale":"2","humidity":"50","precip":"0.0"}}`))
	})
	now, err := c.Current(context.Background(), domain.Location{ID: "1", Source: Name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if now.Temp != 24 || now.Text != "晴" {
		t.Fatalf("unexpected current %+v", now)
	}
}
