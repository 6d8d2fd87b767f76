package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const (
	routeStrategyFastest = 0
	trafficRadiusMeters  = 3000

	fuelCostPerKm    = 0.7
	tripOverheadYuan = 200
	driveMaxKm       = 500
	flightMinKm      = 1500
)

var errNoRouteProvider = errors.New("no route provider configured")

// TrafficService turns routing data into guide text and travel suggestions.
type TrafficService struct {
	geocoder ports.Geocoder
	routes   ports.RouteProvider
	log      zerolog.Logger
}

// NewTrafficService builds the service. routes may be nil, in which case only
// static advice is produced.
func NewTrafficService(geocoder ports.Geocoder, routes ports.RouteProvider, log zerolog.Logger) *TrafficService {
	return &TrafficService{
		geocoder: geocoder,
		routes:   routes,
		log:      log.With().Str("component", "traffic").Logger(),
	}
}

// GuideText renders the traffic block for a guide. It never fails: missing
// route or congestion data falls back to generic advice.
func (s *TrafficService) GuideText(ctx context.Context, origin, destination string) string {
	route, routeErr := s.drivingRoute(ctx, origin, destination)
	return s.guideText(ctx, origin, destination, route, routeErr)
}

// Suggestions lists ways to travel between the two places, recommended
// options first. Without a driving route the list is empty.
func (s *TrafficService) Suggestions(ctx context.Context, origin, destination string) []domain.TravelSuggestion {
	route, err := s.drivingRoute(ctx, origin, destination)
	return s.suggestions(origin, destination, route, err)
}

// Overview builds both the suggestions and the traffic text from a single
// route lookup.
func (s *TrafficService) Overview(ctx context.Context, origin, destination string) ports.RouteOverview {
	route, err := s.drivingRoute(ctx, origin, destination)
	return ports.RouteOverview{
		Origin:      origin,
		Destination: destination,
		Suggestions: s.suggestions(origin, destination, route, err),
		TrafficInfo: s.guideText(ctx, origin, destination, route, err),
	}
}

func (s *TrafficService) guideText(ctx context.Context, origin, destination string, route *domain.DrivingRoute, routeErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚗 交通信息 (%s -> %s):\n\n", origin, destination)

	if routeErr == nil {
		b.WriteString("📍 驾车路线:\n")
		fmt.Fprintf(&b, "   🛣️ 距离: 约 %d 公里\n", route.DistanceKm)
		fmt.Fprintf(&b, "   ⏱️ 预计时间: 约 %d 分钟\n", route.DurationMin)
		if route.TollsCents > 0 {
			fmt.Fprintf(&b, "   💰 过路费: 约 %d 元\n", route.TollsCents/100)
		}
		fmt.Fprintf(&b, "   🚦 红绿灯: %d 个\n\n", route.TrafficLights)
	} else {
		s.log.Info().Err(routeErr).Str("origin", origin).Str("destination", destination).Msg("driving route unavailable")
	}

	traffic, trafficErr := s.trafficAt(ctx, destination)
	switch {
	case trafficErr == nil:
		b.WriteString("📍 实时路况:\n")
		fmt.Fprintf(&b, "   📊 拥堵指数: %.1f\n", traffic.CongestionIndex)
		fmt.Fprintf(&b, "   📋 拥堵等级: %s\n", traffic.Level)
		fmt.Fprintf(&b, "   🚗 平均速度: %.1f km/h\n", traffic.Speed)
		fmt.Fprintf(&b, "   📈 交通状态: %s\n\n", traffic.Status)
	case routeErr == nil:
		b.WriteString("📍 交通提示:\n")
		b.WriteString("   ℹ️ 出发前建议使用导航软件查看实时路况\n")
		b.WriteString("   • 避开早晚高峰 (7:00-9:00, 17:00-19:00)\n")
		fmt.Fprintf(&b, "   • 预计行程 %d 分钟，建议合理安排时间\n\n", route.DurationMin)
	}

	if routeErr != nil {
		b.WriteString("💡 交通建议:\n")
		fmt.Fprintf(&b, "   • 从 %s 到 %s，建议提前规划路线\n", origin, destination)
		b.WriteString("   • 可使用高德地图、百度地图等导航软件获取实时路况\n")
		b.WriteString("   • 出行前查看拥堵时段，避开早晚高峰\n")
		b.WriteString("   • 考虑多种出行方式：飞机、高铁、自驾、大巴等\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *TrafficService) suggestions(origin, destination string, route *domain.DrivingRoute, err error) []domain.TravelSuggestion {
	if err != nil {
		s.log.Info().Err(err).Str("origin", origin).Str("destination", destination).Msg("no route for suggestions")
		return []domain.TravelSuggestion{}
	}

	cost := int(float64(route.DistanceKm)*fuelCostPerKm + float64(route.TollsCents)/100 + tripOverheadYuan)
	out := []domain.TravelSuggestion{{
		Mode:          "自驾",
		Duration:      fmt.Sprintf("约 %d 分钟", route.DurationMin),
		Cost:          fmt.Sprintf("约 %d 元", cost),
		EstimatedCost: cost,
		DistanceKm:    route.DistanceKm,
		Recommended:   route.DistanceKm < driveMaxKm,
	}}

	if route.DistanceKm > driveMaxKm {
		out = append(out,
			domain.TravelSuggestion{Mode: "高铁", Duration: "根据车次", Cost: "根据座位等级", Recommended: true},
			domain.TravelSuggestion{Mode: "飞机", Duration: "约 2-4 小时", Cost: "根据季节和预订时间", Recommended: route.DistanceKm > flightMinKm},
		)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Recommended && !out[j].Recommended
	})
	return out
}

func (s *TrafficService) drivingRoute(ctx context.Context, origin, destination string) (*domain.DrivingRoute, error) {
	if s.routes == nil {
		return nil, errNoRouteProvider
	}
	from, err := s.geocoder.Lookup(ctx, origin)
	if err != nil {
		return nil, err
	}
	to, err := s.geocoder.Lookup(ctx, destination)
	if err != nil {
		return nil, err
	}
	return s.routes.DrivingRoute(ctx, from.Coordinates, to.Coordinates, routeStrategyFastest)
}

func (s *TrafficService) trafficAt(ctx context.Context, city string) (*domain.TrafficStatus, error) {
	if s.routes == nil {
		return nil, errNoRouteProvider
	}
	loc, err := s.geocoder.Lookup(ctx, city)
	if err != nil {
		return nil, err
	}
	status, err := s.routes.TrafficAround(ctx, loc.Coordinates, trafficRadiusMeters)
	if err != nil {
		return nil, err
	}
	status.City = city
	return status, nil
}
