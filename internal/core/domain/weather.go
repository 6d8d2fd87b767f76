package domain

import (
	"fmt"
	"strings"
)

// DailyForecast is one provider-normalised day of forecast data.
type DailyForecast struct {
	Date      string  `json:"date"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	TextDay   string  `json:"weather_day"`
	TextNight string  `json:"weather_night"`
	WindDir   string  `json:"wind_dir,omitempty"`
	WindScale string  `json:"wind_scale,omitempty"`
	WindSpeed float64 `json:"wind_speed,omitempty"`
	Humidity  string  `json:"humidity,omitempty"`
	Precip    string  `json:"precip,omitempty"`
}

// CurrentWeather is a real-time observation.
type CurrentWeather struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Text      string  `json:"weather"`
	WindDir   string  `json:"wind_dir,omitempty"`
	WindScale string  `json:"wind_scale,omitempty"`
	Humidity  string  `json:"humidity,omitempty"`
	Precip    string  `json:"precip,omitempty"`
}

// WeatherReport is the forecast restricted to a trip's date range. Dates in
// the range that fall beyond the provider horizon are listed in Omitted.
type WeatherReport struct {
	City      string          `json:"city"`
	Provider  string          `json:"provider"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Days      []DailyForecast `json:"days"`
	Omitted   []string        `json:"omitted,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// Text renders the report as the weather block embedded in prompts and
// stored alongside the guide.
func (r *WeatherReport) Text() string {
	if len(r.Days) == 0 {
		if r.Warning != "" {
			return "⚠️ " + r.Warning
		}
		return fmt.Sprintf("⚠️ 暂无法获取 %s 天气信息", r.City)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 %s 天气预报 (%s 至 %s):\n\n", r.City, r.StartDate, r.EndDate)
	for _, d := range r.Days {
		fmt.Fprintf(&b, "📅 %s\n", d.Date)
		fmt.Fprintf(&b, "   🌡️ 温度: %.0f°C ~ %.0f°C\n", d.TempMin, d.TempMax)
		if d.TextNight != "" && d.TextNight != d.TextDay {
			fmt.Fprintf(&b, "   ☁️ 天气: 白天%s，夜间%s\n", d.TextDay, d.TextNight)
		} else {
			fmt.Fprintf(&b, "   ☁️ 天气: %s\n", d.TextDay)
		}
		fmt.Fprintf(&b, "   %s\n\n", ClothingAdvice(d.TempMin, d.TempMax))
	}
	if r.Warning != "" {
		fmt.Fprintf(&b, "⚠️ %s\n", r.Warning)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ClothingAdvice maps a day's temperature range to a dressing suggestion.
func ClothingAdvice(tempMin, tempMax float64) string {
	var advice string
	switch {
	case tempMax <= 5:
		advice = "🧥 建议穿着羽绒服、棉衣、厚毛衣等冬季服装"
	case tempMax <= 15:
		advice = "🧥 建议穿着夹克、毛衣、薄外套等春秋服装"
	case tempMax <= 25:
		advice = "👕 建议穿着长袖衬衫、薄外套"
	default:
		advice = "👕 建议穿着短袖、短裤等夏装"
	}
	if tempMin <= 10 && tempMax > 15 {
		advice += "，早晚温差较大，注意保暖"
	}
	return advice
}
