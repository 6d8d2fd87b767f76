package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTripRequest_Validate(t *testing.T) {
	cases := []struct {
		name string
		req  TripRequest
		want error
	}{
		{"ok", TripRequest{Destination: "北京", StartDate: "2025-06-01", EndDate: "2025-06-04"}, nil},
		{"same day", TripRequest{Destination: "北京", StartDate: "2025-06-01", EndDate: "2025-06-01"}, nil},
		{"no destination", TripRequest{StartDate: "2025-06-01", EndDate: "2025-06-04"}, ErrDestinationRequired},
		{"negative budget", TripRequest{Destination: "北京", StartDate: "2025-06-01", EndDate: "2025-06-04", Budget: -1}, ErrInvalidBudget},
		{"bad format", TripRequest{Destination: "北京", StartDate: "2025/06/01", EndDate: "2025-06-04"}, ErrInvalidDates},
		{"reversed", TripRequest{Destination: "北京", StartDate: "2025-06-04", EndDate: "2025-06-01"}, ErrInvalidDates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			if err := req.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTripRequest_ValidateDefaultsOrigin(t *testing.T) {
	req := TripRequest{Destination: "成都", StartDate: "2025-06-01", EndDate: "2025-06-03"}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.Origin != "成都" {
		t.Fatalf("expected origin to default to destination, got %q", req.Origin)
	}
}

func TestTripRequest_Days(t *testing.T) {
	req := TripRequest{StartDate: "2025-06-01", EndDate: "2025-06-04"}
	if got := req.Days(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	req.EndDate = "garbage"
	if got := req.Days(); got != 3 {
		t.Fatalf("expected fallback of 3, got %d", got)
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}
	if !s.Expired(now) {
		t.Fatalf("session should expire exactly at ExpiresAt")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Fatalf("session should be valid before ExpiresAt")
	}
	if (&Session{}).Expired(now) {
		t.Fatalf("zero expiry never expires")
	}
}

func TestClothingAdvice(t *testing.T) {
	cases := []struct {
		min, max float64
		contains string
	}{
		{-5, 3, "羽绒服"},
		{5, 12, "春秋服装"},
		{12, 22, "长袖衬衫"},
		{22, 32, "夏装"},
		{8, 20, "早晚温差较大"},
	}
	for _, tc := range cases {
		got := ClothingAdvice(tc.min, tc.max)
		if !strings.Contains(got, tc.contains) {
			t.Fatalf("ClothingAdvice(%v, %v) = %q, want it to mention %q", tc.min, tc.max, got, tc.contains)
		}
	}
	if got := ClothingAdvice(12, 14); strings.Contains(got, "温差") {
		t.Fatalf("no spread note expected when max <= 15: %q", got)
	}
}
