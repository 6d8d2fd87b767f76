package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidPreferences = errors.New("invalid preferences")

type HotelPreferences struct {
	BudgetMin          int    `json:"budget_min,omitempty"`
	BudgetMax          int    `json:"budget_max,omitempty"`
	Quiet              bool   `json:"quiet,omitempty"`
	AwayFromRoad       bool   `json:"away_from_road,omitempty"`
	LocationPreference string `json:"location_preference,omitempty"`
}

type MealPreferences struct {
	Type                []string `json:"type,omitempty"`
	SpicyLevel          string   `json:"spicy_level,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
}

type TransportPreferences struct {
	Preference     string `json:"preference,omitempty"`
	AvoidPeakHours bool   `json:"avoid_peak_hours,omitempty"`
}

type ActivityPreferences struct {
	Type []string `json:"type,omitempty"`
	Pace string   `json:"pace,omitempty"`
}

type TicketPreferences struct {
	CheckSeniorDiscount  bool `json:"check_senior_discount,omitempty"`
	CheckStudentDiscount bool `json:"check_student_discount,omitempty"`
	CheckFreeEntry       bool `json:"check_free_entry,omitempty"`
}

// Preferences is the structured form of a traveller's free-text wishes.
// A nil category means nothing was expressed for it.
type Preferences struct {
	Hotel     *HotelPreferences     `json:"hotel,omitempty"`
	Meal      *MealPreferences      `json:"meal,omitempty"`
	Transport *TransportPreferences `json:"transport,omitempty"`
	Activity  *ActivityPreferences  `json:"activity,omitempty"`
	Ticket    *TicketPreferences    `json:"ticket,omitempty"`
}

// ParsePreferences decodes JSON preferences, rejecting unknown categories
// and fields.
func ParsePreferences(data []byte) (Preferences, error) {
	var p Preferences
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Preferences{}, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	return p, nil
}

// IsEmpty reports whether no category is set.
func (p Preferences) IsEmpty() bool {
	return p.Hotel == nil && p.Meal == nil && p.Transport == nil && p.Activity == nil && p.Ticket == nil
}

// Merge deep-merges override on top of p. Scalars set in override win,
// lists are unioned and categories missing from p are copied over.
func (p Preferences) Merge(override Preferences) Preferences {
	out := p.clone()

	if o := override.Hotel; o != nil {
		if out.Hotel == nil {
			out.Hotel = &HotelPreferences{}
		}
		if o.BudgetMin != 0 {
			out.Hotel.BudgetMin = o.BudgetMin
		}
		if o.BudgetMax != 0 {
			out.Hotel.BudgetMax = o.BudgetMax
		}
		out.Hotel.Quiet = out.Hotel.Quiet || o.Quiet
		out.Hotel.AwayFromRoad = out.Hotel.AwayFromRoad || o.AwayFromRoad
		if o.LocationPreference != "" {
			out.Hotel.LocationPreference = o.LocationPreference
		}
	}
	if o := override.Meal; o != nil {
		if out.Meal == nil {
			out.Meal = &MealPreferences{}
		}
		out.Meal.Type = union(out.Meal.Type, o.Type)
		out.Meal.DietaryRestrictions = union(out.Meal.DietaryRestrictions, o.DietaryRestrictions)
		if o.SpicyLevel != "" {
			out.Meal.SpicyLevel = o.SpicyLevel
		}
	}
	if o := override.Transport; o != nil {
		if out.Transport == nil {
			out.Transport = &TransportPreferences{}
		}
		if o.Preference != "" {
			out.Transport.Preference = o.Preference
		}
		out.Transport.AvoidPeakHours = out.Transport.AvoidPeakHours || o.AvoidPeakHours
	}
	if o := override.Activity; o != nil {
		if out.Activity == nil {
			out.Activity = &ActivityPreferences{}
		}
		out.Activity.Type = union(out.Activity.Type, o.Type)
		if o.Pace != "" {
			out.Activity.Pace = o.Pace
		}
	}
	if o := override.Ticket; o != nil {
		if out.Ticket == nil {
			out.Ticket = &TicketPreferences{}
		}
		out.Ticket.CheckSeniorDiscount = out.Ticket.CheckSeniorDiscount || o.CheckSeniorDiscount
		out.Ticket.CheckStudentDiscount = out.Ticket.CheckStudentDiscount || o.CheckStudentDiscount
		out.Ticket.CheckFreeEntry = out.Ticket.CheckFreeEntry || o.CheckFreeEntry
	}
	return out
}

var mealTypeNames = map[string]string{
	"local":           "当地特色",
	"budget_friendly": "经济实惠",
}

// Text renders the preferences as a short natural-language description.
func (p Preferences) Text() string {
	var parts []string

	if h := p.Hotel; h != nil {
		var hp []string
		if h.BudgetMin != 0 && h.BudgetMax != 0 {
			hp = append(hp, fmt.Sprintf("预算%d-%d元", h.BudgetMin, h.BudgetMax))
		}
		if h.Quiet {
			hp = append(hp, "需要安静环境")
		}
		if h.AwayFromRoad {
			hp = append(hp, "不靠马路")
		}
		if h.LocationPreference != "" {
			hp = append(hp, h.LocationPreference)
		}
		if len(hp) > 0 {
			parts = append(parts, "住宿要求："+strings.Join(hp, "、"))
		}
	}
	if m := p.Meal; m != nil {
		var mp []string
		for _, t := range m.Type {
			if name, ok := mealTypeNames[t]; ok {
				t = name
			}
			mp = append(mp, t)
		}
		if m.SpicyLevel != "" {
			mp = append(mp, "辣度"+m.SpicyLevel)
		}
		mp = append(mp, m.DietaryRestrictions...)
		if len(mp) > 0 {
			parts = append(parts, "餐饮偏好："+strings.Join(mp, "、"))
		}
	}
	if t := p.Transport; t != nil {
		var tp []string
		if t.Preference != "" {
			tp = append(tp, t.Preference)
		}
		if t.AvoidPeakHours {
			tp = append(tp, "避开高峰时段")
		}
		if len(tp) > 0 {
			parts = append(parts, "交通偏好："+strings.Join(tp, "、"))
		}
	}
	if t := p.Ticket; t != nil {
		var tp []string
		if t.CheckSeniorDiscount {
			tp = append(tp, "关注60岁以上老年人优惠")
		}
		if t.CheckStudentDiscount {
			tp = append(tp, "关注学生优惠")
		}
		if t.CheckFreeEntry {
			tp = append(tp, "关注免费景点")
		}
		if len(tp) > 0 {
			parts = append(parts, "门票需求："+strings.Join(tp, "、"))
		}
	}
	if a := p.Activity; a != nil {
		ap := append([]string{}, a.Type...)
		if a.Pace != "" {
			ap = append(ap, "节奏"+a.Pace)
		}
		if len(ap) > 0 {
			parts = append(parts, "活动偏好："+strings.Join(ap, "、"))
		}
	}
	return strings.Join(parts, "；")
}

// PromptSection renders the preferences for injection into an LLM prompt.
func (p Preferences) PromptSection() string {
	text := p.Text()
	if text == "" {
		return ""
	}
	return "\n**用户偏好**: " + text + "\n"
}

func (p Preferences) clone() Preferences {
	var out Preferences
	if p.Hotel != nil {
		h := *p.Hotel
		out.Hotel = &h
	}
	if p.Meal != nil {
		m := *p.Meal
		m.Type = append([]string(nil), p.Meal.Type...)
		m.DietaryRestrictions = append([]string(nil), p.Meal.DietaryRestrictions...)
		out.Meal = &m
	}
	if p.Transport != nil {
		t := *p.Transport
		out.Transport = &t
	}
	if p.Activity != nil {
		a := *p.Activity
		a.Type = append([]string(nil), p.Activity.Type...)
		out.Activity = &a
	}
	if p.Ticket != nil {
		t := *p.Ticket
		out.Ticket = &t
	}
	return out
}

func union(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
