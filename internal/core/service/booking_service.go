package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const (
	flightTemperature = 0.7
	flightMaxTokens   = 1000

	flightSystemPrompt = "你是旅行规划助手，专门提供机票预订建议。"
	flightsFallbackMsg = "机票建议解析失败，已使用通用建议"
)

const (
	hotelEconomy = "经济型"
	hotelComfort = "舒适型"
	hotelUpscale = "高档型"
	hotelLuxury  = "豪华型"
)

var hotelPrices = map[string]string{
	hotelEconomy: "100-300 元/晚",
	hotelComfort: "300-600 元/晚",
	hotelUpscale: "600-1200 元/晚",
	hotelLuxury:  "1200 元以上/晚",
}

var hotelTips = map[string]string{
	hotelEconomy: "提前预订，注意查看用户评价",
	hotelComfort: "对比多个平台价格，关注优惠活动",
	hotelUpscale: "关注会员优惠，可考虑升级套餐",
	hotelLuxury:  "建议直接联系酒店洽谈优惠",
}

var bookingLinks = domain.BookingLinks{
	Flights: []domain.BookingLink{
		{Name: "携程机票", URL: "https://flights.ctrip.com/online/channel/domestic", Description: "国内国际机票预订"},
		{Name: "去哪儿机票", URL: "https://flight.qunar.com/", Description: "比价预订，找便宜机票"},
	},
	Trains: []domain.BookingLink{
		{Name: "12306 官方", URL: "https://www.12306.cn/", Description: "中国铁路官方购票平台"},
		{Name: "携程火车票", URL: "https://trains.ctrip.com/", Description: "火车票查询预订"},
	},
	Hotels: []domain.BookingLink{
		{Name: "携程酒店", URL: "https://hotels.ctrip.com/", Description: "全球酒店预订"},
		{Name: "Booking.com", URL: "https://www.booking.com/", Description: "国际酒店预订平台"},
	},
}

var bookingTips = []string{
	"📅 提前预订：机票建议提前 15-30 天，火车票提前 15 天",
	"⏰ 避开高峰：节假日价格大幅上涨，错峰出行更划算",
	"💰 多平台比价：使用多个平台对比价格和优惠",
	"🎁 关注优惠：会员日、大促活动时预订更便宜",
	"📱 官方渠道：优先使用官方渠道或大型平台预订",
	"⚠️ 注意退改：预订前仔细了解退改签政策",
}

// BookingService assembles flight, train and hotel guidance. Only flights
// involve the LLM; everything else is derived from the request.
type BookingService struct {
	llm ports.LLM
	log zerolog.Logger
}

func NewBookingService(llm ports.LLM, log zerolog.Logger) *BookingService {
	return &BookingService{llm: llm, log: log.With().Str("component", "booking").Logger()}
}

// Info never fails. When the flight suggestions cannot be obtained or
// parsed, generic advice is used and the result is flagged.
func (s *BookingService) Info(ctx context.Context, req domain.TripRequest) *domain.BookingInfo {
	days := req.Days()
	info := &domain.BookingInfo{
		Destination: req.Destination,
		Origin:      req.Origin,
		Dates:       domain.TripDates{Start: req.StartDate, End: req.EndDate, Duration: days},
		Trains:      trainSuggestions(req.Origin, req.Destination),
		Hotels:      hotelSuggestions(req.Budget, days),
		Links:       bookingLinks,
		Tips:        bookingTips,
	}

	flights, err := s.flightSuggestions(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Str("destination", req.Destination).Msg("flight suggestions fell back to defaults")
		flights = defaultFlights()
		info.FlightsFallback = true
		info.Warning = flightsFallbackMsg
	}
	info.Flights = flights
	return info
}

func (s *BookingService) flightSuggestions(ctx context.Context, req domain.TripRequest) ([]domain.FlightSuggestion, error) {
	budget := "未指定"
	if req.Budget > 0 {
		budget = fmt.Sprintf("%.0f", req.Budget)
	}
	prompt := fmt.Sprintf(`请为以下行程生成机票预订建议：

出发地：%s
目的地：%s
出发日期：%s
返程日期：%s
预算：%s 元

请以 JSON 格式返回 3-5 条机票建议，每条包含：
- airline: 航空公司名称
- flight_type: 航班类型（直飞/转机）
- estimated_price: 预估价格
- booking_tips: 预订建议
- best_time: 最佳预订时机

只返回 JSON 数组，不要其他内容。`, req.Origin, req.Destination, req.StartDate, req.EndDate, budget)

	out, err := s.llm.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: flightSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: flightTemperature,
		MaxTokens:   flightMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var flights []domain.FlightSuggestion
	if err := json.Unmarshal([]byte(stripCodeFence(out.Content)), &flights); err != nil {
		return nil, fmt.Errorf("decode flight suggestions: %w", err)
	}
	return flights, nil
}

// Markdown renders the booking section appended to a guide.
func (s *BookingService) Markdown(info *domain.BookingInfo) string {
	var b strings.Builder
	b.WriteString("## 九、订票指南 🎫\n\n")

	if len(info.Flights) > 0 {
		b.WriteString("### ✈️ 机票预订\n")
		for _, f := range info.Flights {
			fmt.Fprintf(&b, "- **%s** (%s)\n", orNA(f.Airline, "未知"), orNA(f.FlightType, "N/A"))
			fmt.Fprintf(&b, "  - 预估价格：%s\n", orNA(f.EstimatedPrice, "N/A"))
			fmt.Fprintf(&b, "  - 预订建议：%s\n\n", orNA(f.BookingTips, "N/A"))
		}
		if info.FlightsFallback {
			fmt.Fprintf(&b, "> ⚠️ %s\n\n", flightsFallbackMsg)
		}
	}

	if len(info.Trains) > 0 {
		b.WriteString("### 🚄 火车票预订\n")
		for _, t := range info.Trains {
			fmt.Fprintf(&b, "- **%s**\n", t.TrainType)
			fmt.Fprintf(&b, "  - 预估价格：%s\n", t.EstimatedPrice)
			fmt.Fprintf(&b, "  - 预订建议：%s\n\n", t.BookingTips)
		}
	}

	if len(info.Hotels) > 0 {
		b.WriteString("### 🏨 酒店预订\n")
		for _, h := range info.Hotels {
			fmt.Fprintf(&b, "- **%s**\n", h.HotelType)
			fmt.Fprintf(&b, "  - 预估价格：%s\n", h.EstimatedPrice)
			fmt.Fprintf(&b, "  - 位置建议：%s\n", h.LocationTips)
			fmt.Fprintf(&b, "  - 预订建议：%s\n\n", h.BookingTips)
		}
	}

	b.WriteString("### 🔗 官方预订链接\n")
	writeLinks(&b, "机票", info.Links.Flights)
	writeLinks(&b, "火车票", info.Links.Trains)
	writeLinks(&b, "酒店", info.Links.Hotels)

	if len(info.Tips) > 0 {
		b.WriteString("### 💡 订票技巧\n")
		for _, tip := range info.Tips {
			b.WriteString(tip + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeLinks(b *strings.Builder, title string, links []domain.BookingLink) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**：\n", title)
	for _, l := range links {
		fmt.Fprintf(b, "- [%s](%s) - %s\n", l.Name, l.URL, l.Description)
	}
	b.WriteString("\n")
}

func defaultFlights() []domain.FlightSuggestion {
	return []domain.FlightSuggestion{{
		Airline:        "建议查询实时价格",
		FlightType:     "直飞/转机",
		EstimatedPrice: "根据季节和预订时间变化",
		BookingTips:    "建议提前 15-30 天预订以获得更好价格",
		BestTime:       "周二下午或周三凌晨预订通常更便宜",
	}}
}

// trainSuggestions adds high-speed rail when the two places are in
// different cities or provinces.
func trainSuggestions(origin, destination string) []domain.TrainSuggestion {
	var out []domain.TrainSuggestion
	if regionOf(origin) != regionOf(destination) {
		out = append(out, domain.TrainSuggestion{
			TrainType:          "高铁/动车",
			EstimatedPrice:     "根据距离和席位类型变化",
			Duration:           "根据实际车次",
			BookingTips:        "跨省高铁建议提前 15 天预订",
			SeatRecommendation: "二等座性价比高，一等座更舒适",
		})
	}
	return append(out, domain.TrainSuggestion{
		TrainType:          "普通列车",
		EstimatedPrice:     "相对经济实惠",
		Duration:           "时间较长但价格便宜",
		BookingTips:        "适合预算有限的旅行",
		SeatRecommendation: "硬卧适合过夜，硬座适合短途",
	})
}

func regionOf(place string) string {
	place, _, _ = strings.Cut(place, "省")
	place, _, _ = strings.Cut(place, "市")
	return place
}

// hotelSuggestions picks tiers from the daily budget.
func hotelSuggestions(budget float64, days int) []domain.HotelSuggestion {
	tiers := []string{hotelEconomy, hotelComfort, hotelUpscale}
	if budget > 0 {
		if days <= 0 {
			days = 1
		}
		switch daily := budget / float64(days); {
		case daily >= 800:
			tiers = []string{hotelLuxury, hotelUpscale}
		case daily >= 400:
			tiers = []string{hotelComfort, hotelUpscale}
		default:
			tiers = []string{hotelEconomy, hotelComfort}
		}
	}

	out := make([]domain.HotelSuggestion, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, domain.HotelSuggestion{
			HotelType:      t,
			EstimatedPrice: hotelPrices[t],
			LocationTips:   "建议选择市中心或景区附近的酒店，交通便利，周边配套设施完善",
			BookingTips:    hotelTips[t],
		})
	}
	return out
}

// stripCodeFence removes a surrounding ```json fence from LLM output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func orNA(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
