package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const (
	preferenceTemperature = 0.3
	preferenceMaxTokens   = 1000
)

const preferenceSystemPrompt = `你是一个旅游偏好提取助手。请从用户的自然语言输入中提取结构化的旅游偏好。

请以 JSON 格式返回，包含以下可能的字段：

1. hotel（酒店偏好）: budget_min（数字）, budget_max（数字）, quiet（布尔）, away_from_road（布尔）, location_preference（字符串）
2. meal（餐饮偏好）: type（数组，如 ["local", "budget_friendly"]）, spicy_level（字符串）, dietary_restrictions（数组）
3. transport（交通偏好）: preference（字符串）, avoid_peak_hours（布尔）
4. activity（活动偏好）: type（数组）, pace（字符串）
5. ticket（门票偏好）: check_senior_discount（布尔）, check_student_discount（布尔）, check_free_entry（布尔）

只返回提取到的字段，未提到的字段不要包含。返回纯 JSON，不要有其他文字。`

var hotelBudgetPattern = regexp.MustCompile(`(\d+)\s*[-~到]\s*(\d+)\s*元`)

var (
	quietKeywords     = []string{"安静", "不吵", "清净"}
	awayRoadKeywords  = []string{"不靠马路", "不临街", "远离马路", "不临道路"}
	localFoodKeywords = []string{"当地美食", "本地美食", "特色小吃", "地道美食"}
	seniorKeywords    = []string{"60岁以上", "老年人", "senior", "老人优惠"}
	studentKeywords   = []string{"学生", "学生证"}
	freeEntryKeywords = []string{"免费", "免票"}
)

// PreferenceService turns free text into structured preferences.
type PreferenceService struct {
	llm ports.LLM
	log zerolog.Logger
}

func NewPreferenceService(llm ports.LLM, log zerolog.Logger) *PreferenceService {
	return &PreferenceService{llm: llm, log: log.With().Str("component", "preferences").Logger()}
}

// Extract parses text with the LLM when useLLM is set, falling back to
// keyword rules on any LLM or decoding failure.
func (s *PreferenceService) Extract(ctx context.Context, text string, useLLM bool) (domain.Preferences, error) {
	if !useLLM || s.llm == nil {
		return ExtractPreferenceRules(text), nil
	}

	out, err := s.llm.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: preferenceSystemPrompt},
			{Role: "user", Content: "请从以下输入中提取旅游偏好：\n\n" + text},
		},
		Temperature: preferenceTemperature,
		MaxTokens:   preferenceMaxTokens,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("llm preference extraction failed, using rules")
		return ExtractPreferenceRules(text), nil
	}

	prefs, err := domain.ParsePreferences([]byte(stripCodeFence(out.Content)))
	if err != nil {
		s.log.Warn().Err(err).Msg("llm returned invalid preferences, using rules")
		return ExtractPreferenceRules(text), nil
	}
	return prefs, nil
}

// ExtractPreferenceRules is the keyword-based extractor.
func ExtractPreferenceRules(text string) domain.Preferences {
	var p domain.Preferences
	lower := strings.ToLower(text)

	hotel := func() *domain.HotelPreferences {
		if p.Hotel == nil {
			p.Hotel = &domain.HotelPreferences{}
		}
		return p.Hotel
	}
	ticket := func() *domain.TicketPreferences {
		if p.Ticket == nil {
			p.Ticket = &domain.TicketPreferences{}
		}
		return p.Ticket
	}

	if m := hotelBudgetPattern.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		hotel().BudgetMin, hotel().BudgetMax = lo, hi
	}
	if containsAny(lower, awayRoadKeywords) {
		hotel().AwayFromRoad = true
	}
	if containsAny(lower, quietKeywords) {
		hotel().Quiet = true
	}
	if containsAny(lower, localFoodKeywords) {
		p.Meal = &domain.MealPreferences{Type: []string{"local"}}
	}
	if containsAny(lower, seniorKeywords) {
		ticket().CheckSeniorDiscount = true
	}
	if containsAny(lower, studentKeywords) {
		ticket().CheckStudentDiscount = true
	}
	if containsAny(lower, freeEntryKeywords) {
		ticket().CheckFreeEntry = true
	}
	return p
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
