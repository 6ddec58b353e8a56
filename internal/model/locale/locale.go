package locale

import "strings"

// Locale selects prompt scripts, closing keywords and default strings. It never
// changes the wire shape of a response.
type Locale string

const (
	ZH Locale = "zh"
	EN Locale = "en"
)

// Parse normalizes client input such as "en-US" or "zh_CN". Unknown values fall back.
func Parse(raw string, fallback Locale) Locale {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return fallback
	case strings.HasPrefix(value, "zh"):
		return ZH
	case strings.HasPrefix(value, "en"):
		return EN
	default:
		return fallback
	}
}
