package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

// stubLLM answers every completion with the next reply in line, or with
// err when set.
type stubLLM struct {
	replies  []string
	err      error
	requests []ports.CompletionRequest
}

func (l *stubLLM) Complete(_ context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	l.requests = append(l.requests, req)
	if l.err != nil {
		return nil, l.err
	}
	reply := ""
	if len(l.replies) > 0 {
		reply, l.replies = l.replies[0], l.replies[1:]
	}
	return &ports.Completion{
		Content: reply,
		Model:   "deepseek-chat",
		Usage:   domain.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}, nil
}

func (l *stubLLM) lastUserMessage() string {
	if len(l.requests) == 0 {
		return ""
	}
	msgs := l.requests[len(l.requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

func bookingRequest(budget float64) domain.TripRequest {
	return domain.TripRequest{
		Destination: "北京", Origin: "上海",
		StartDate: "2025-06-01", EndDate: "2025-06-04", Budget: budget,
	}
}

func TestBookingService_Info_ParsesFencedFlights(t *testing.T) {
	llm := &stubLLM{replies: []string{"```json\n[{\"airline\":\"国航\",\"flight_type\":\"直飞\",\"estimated_price\":\"800元\"}]\n```"}}
	svc := NewBookingService(llm, zerolog.Nop())

	info := svc.Info(context.Background(), bookingRequest(3000))
	if info.FlightsFallback || info.Warning != "" {
		t.Fatalf("unexpected fallback: %+v", info)
	}
	if len(info.Flights) != 1 || info.Flights[0].Airline != "国航" {
		t.Fatalf("unexpected flights %+v", info.Flights)
	}
	if info.Dates.Duration != 3 {
		t.Fatalf("expected 3 nights, got %d", info.Dates.Duration)
	}
	if req := llm.requests[0]; req.MaxTokens != flightMaxTokens || req.Temperature != flightTemperature {
		t.Fatalf("unexpected completion params %+v", req)
	}
}

func TestBookingService_Info_FallbackIsFlagged(t *testing.T) {
	for name, llm := range map[string]*stubLLM{
		"malformed": {replies: []string{"抱歉，我无法提供"}},
		"error":     {err: errors.New("rate limited")},
	} {
		svc := NewBookingService(llm, zerolog.Nop())
		info := svc.Info(context.Background(), bookingRequest(0))
		if !info.FlightsFallback || info.Warning == "" {
			t.Fatalf("%s: expected flagged fallback, got %+v", name, info)
		}
		if len(info.Flights) != 1 || info.Flights[0].Airline != "建议查询实时价格" {
			t.Fatalf("%s: expected default flight advice, got %+v", name, info.Flights)
		}
		if !strings.Contains(svc.Markdown(info), flightsFallbackMsg) {
			t.Fatalf("%s: markdown does not mention the fallback", name)
		}
	}
}

func TestHotelSuggestions_Tiers(t *testing.T) {
	cases := []struct {
		budget float64
		days   int
		want   []string
	}{
		{0, 3, []string{hotelEconomy, hotelComfort, hotelUpscale}},
		{3000, 3, []string{hotelLuxury, hotelUpscale}},
		{1500, 3, []string{hotelComfort, hotelUpscale}},
		{600, 3, []string{hotelEconomy, hotelComfort}},
		{500, 0, []string{hotelComfort, hotelUpscale}},
	}
	for _, tc := range cases {
		got := hotelSuggestions(tc.budget, tc.days)
		if len(got) != len(tc.want) {
			t.Fatalf("budget %.0f/%d: got %+v", tc.budget, tc.days, got)
		}
		for i := range got {
			if got[i].HotelType != tc.want[i] || got[i].EstimatedPrice == "" {
				t.Fatalf("budget %.0f/%d: got %+v", tc.budget, tc.days, got)
			}
		}
	}
}

func TestTrainSuggestions(t *testing.T) {
	if got := trainSuggestions("上海市", "北京市"); len(got) != 2 || got[0].TrainType != "高铁/动车" {
		t.Fatalf("expected rail for a cross-region trip, got %+v", got)
	}
	if got := trainSuggestions("成都", "成都市"); len(got) != 1 {
		t.Fatalf("expected only ordinary trains within a city, got %+v", got)
	}
}

func TestBookingService_Markdown(t *testing.T) {
	svc := NewBookingService(&stubLLM{err: errors.New("x")}, zerolog.Nop())
	md := svc.Markdown(svc.Info(context.Background(), bookingRequest(3000)))

	for _, want := range []string{"## 九、订票指南", "### ✈️ 机票预订", "### 🚄 火车票预订", "### 🏨 酒店预订", "https://www.12306.cn/", "### 💡 订票技巧"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"[1]":                 "[1]",
		"```json\n[1]\n```":   "[1]",
		"```\n{\"a\":1}\n```": "{\"a\":1}",
		"  [2]  ":             "[2]",
	}
	for in, want := range cases {
		if got := stripCodeFence(in); got != want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}
