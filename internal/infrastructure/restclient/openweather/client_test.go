package openweather

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
	return NewClient(Config{APIKey: "ow-key", BaseURL: srv.URL, Retry: restclient.RetryPolicy{Attempts: 1}}, zerolog.Nop())
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/weather" || q.Get("q") != "Beijing" || q.Get("appid") != "ow-key" || q.Get("units") != "metric" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"cod":200,"name":"Beijing","coord":{"lat":39.9075,"lon":116.3972}}`))
	})

	loc, err := c.Lookup(context.Background(), "Beijing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Coordinates.Lng != 116.3972 || loc.Source != Name {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestLookup_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})
	if _, err := c.Lookup(context.Background(), "Atlantis"); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestForecast_AggregatesPerDay(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cnt") != "16" {
			t.Errorf("expected cnt=16, got %s", r.URL.Query().Get("cnt"))
		}
		_, _ = w.Write([]byte(`{"cod":"200","list":[
			{"dt_txt":"2025-06-02 00:00:00","main":{"temp_min":18,"temp_max":20,"humidity":60},"weather":[{"description":"多云"}],"wind":{"speed":2.1}},
			{"dt_txt":"2025-06-01 09:00:00","main":{"temp_min":21,"temp_max":27,"humidity":40},"weather":[{"description":"晴"}],"wind":{"speed":3}},
			{"dt_txt":"2025-06-01 15:00:00","main":{"temp_min":24,"temp_max":31,"humidity":35},"weather":[{"description":"晴"}],"wind":{"speed":3}},
			{"dt_txt":"2025-06-02 12:00:00","main":{"temp_min":22,"temp_max":28,"humidity":50},"weather":[{"description":"小雨"}],"wind":{"speed":4}}]}`))
	})

	days, err := c.Forecast(context.Background(), domain.Location{Coordinates: domain.Coordinates{Lng: 116.4, Lat: 39.9}}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2025-06-01" || days[0].TempMin != 21 || days[0].TempMax != 31 {
		t.Fatalf("unexpected first day %+v", days[0])
	}
	if days[1].TempMin != 18 || days[1].TempMax != 28 || days[1].TextDay != "多云" {
		t.Fatalf("unexpected second day %+v", days[1])
	}
}

func TestForecast_GroupsByCityLocalDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Beijing is UTC+8: 2025-06-01 18:00 UTC is already 2025-06-02 locally.
		_, _ = w.Write([]byte(`{"cod":"200","city":{"name":"Beijing","timezone":28800},"list":[
			{"dt":1748764800,"dt_txt":"2025-06-01 08:00:00","main":{"temp_min":25,"temp_max":30,"humidity":40},"weather":[{"description":"晴"}],"wind":{"speed":3}},
			{"dt":1748800800,"dt_txt":"2025-06-01 18:00:00","main":{"temp_min":16,"temp_max":18,"humidity":70},"weather":[{"description":"多云"}],"wind":{"speed":2}}]}`))
	})

	days, err := c.Forecast(context.Background(), domain.Location{Coordinates: domain.Coordinates{Lng: 116.4, Lat: 39.9}}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 local days, got %+v", days)
	}
	if days[0].Date != "2025-06-01" || days[0].TempMin != 25 {
		t.Fatalf("unexpected first day %+v", days[0])
	}
	if days[1].Date != "2025-06-02" || days[1].TempMax != 18 || days[1].TextDay != "多云" {
		t.Fatalf("late UTC slot should land on the next local day, got %+v", days[1])
	}
}

func TestCodOK(t *testing.T) {
	if err := codOK([]byte(`{"cod":"200"}`)); err != nil {
		t.Fatalf("string cod 200 should pass: %v", err)
	}
	if err := codOK([]byte(`{"cod":200}`)); err != nil {
		t.Fatalf("numeric cod 200 should pass: %v", err)
	}
	if err := codOK([]byte(`{"cod":"401","message":"Invalid API key"}`)); err == nil {
		t.Fatalf("expected vendor error")
	}
}
