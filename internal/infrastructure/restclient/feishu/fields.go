package feishu

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Bitable returns text cells either as plain strings or as rich-text
// segments ([{"type":"text","text":"..."}]); numbers arrive as float64.

func textField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		var b strings.Builder
		for _, seg := range v {
			switch s := seg.(type) {
			case map[string]any:
				if t, ok := s["text"].(string); ok {
					b.WriteString(t)
				}
			case string:
				b.WriteString(s)
			}
		}
		return b.String()
	default:
		return ""
	}
}

func numberField(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

// millisField reads a Unix millisecond timestamp.
func millisField(fields map[string]any, name string) time.Time {
	ms := numberField(fields, name)
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}

// guideFilter is the exact-match condition on guide_id.
func guideFilter(guideID string) string {
	filter := map[string]any{
		"conditions": []map[string]any{{
			"field_name": "guide_id",
			"operator":   "is",
			"value":      []string{guideID},
		}},
	}
	b, _ := json.Marshal(filter)
	return string(b)
}

const createdAtDesc = `[{"field_name":"created_at","desc":"true"}]`
