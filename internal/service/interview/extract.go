package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in model output")

// extractObject takes the span from the first '{' to the last '}' and parses it
// strictly. Either stage failing is reported as a format error by the caller.
func extractObject(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errNoJSONObject
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if obj == nil {
		return nil, errNoJSONObject
	}
	return obj, nil
}

// stringField returns a trimmed string value. Numbers are formatted; anything
// else counts as absent.
func stringField(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func stringOr(obj map[string]any, fallback string, keys ...string) string {
	if v := stringField(obj, keys...); v != "" {
		return v
	}
	return fallback
}

func listField(obj map[string]any, key string) []any {
	list, _ := obj[key].([]any)
	return list
}

func objectField(obj map[string]any, key string) map[string]any {
	nested, _ := obj[key].(map[string]any)
	return nested
}

// numberField accepts JSON numbers and numeric strings. ok is false for absent,
// zero or unparsable values so callers can apply their default.
func numberField(obj map[string]any, key string) (float64, bool) {
	var value float64
	switch v := obj[key].(type) {
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if value == 0 {
		return 0, false
	}
	return value, true
}

func stringList(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
