package fieldmap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// Transform converts a raw scalar value according to the directive. It never
// fails: when the input cannot be converted cleanly the best-effort fallback
// is returned and ok is false so callers can log the degradation. A nil
// directive passes the value through untouched.
func Transform(value any, tr *Transformation) (result any, ok bool) {
	if tr == nil {
		return value, true
	}

	var opts TransformOptions
	if tr.Options != nil {
		opts = *tr.Options
	}

	switch tr.Type {
	case TransformPhone:
		region := opts.PhoneRegion
		if region == "" {
			region = "GB"
		}
		return FormatPhone(stringify(value), region)

	case TransformDate:
		return FormatDate(stringify(value))

	case TransformBoolean:
		return ParseBool(value, opts.BooleanMapping), true

	case TransformNumber:
		return ParseNumber(value), true

	case TransformText:
		fallthrough
	default:
		return strings.TrimSpace(stringify(value)), true
	}
}

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// FormatPhone normalizes a phone string to E.164 for the given region. When
// the number does not validate, every non-digit non-plus character is stripped
// as a best-effort cleanup and ok is false. Feeding an E.164 result back in is
// a no-op.
func FormatPhone(raw, region string) (string, bool) {
	num, err := phonenumbers.Parse(raw, region)
	if err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), true
	}
	return nonPhoneChars.ReplaceAllString(raw, ""), false
}

// dateLayouts is the parse fallback chain: ISO first, then day-first (UK),
// then month-first (US). Order matters for ambiguous inputs like 01/02/2024.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// FormatDate normalizes a date string to an ISO-8601 UTC instant. Strings
// that match no known layout are returned unchanged with ok false.
func FormatDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		return t.UTC().Format("2006-01-02T15:04:05.000Z07:00"), true
	}
	return raw, false
}

// booleanTokens are the inputs treated as true absent a custom mapping.
var booleanTokens = map[string]struct{}{
	"true": {}, "yes": {}, "1": {}, "on": {}, "checked": {},
}

// ParseBool coerces a value to a boolean. With a custom mapping the value is
// compared (case-insensitively) against the mapping's true string; otherwise
// membership in the common affirmative token set decides.
func ParseBool(value any, mapping *BooleanMapping) bool {
	s := strings.ToLower(strings.TrimSpace(stringify(value)))
	if mapping != nil && mapping.True != "" {
		return s == strings.ToLower(mapping.True)
	}
	_, ok := booleanTokens[s]
	return ok
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber coerces a value to a float. Like parseFloat it accepts a
// numeric prefix on a longer string, and yields 0 when nothing parses.
func ParseNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}

	s := strings.TrimSpace(stringify(value))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if prefix := numberPrefix.FindString(s); prefix != "" {
		if f, err := strconv.ParseFloat(prefix, 64); err == nil {
			return f
		}
	}
	return 0
}

// stringify renders a scalar the way the lead payloads carry it. JSON numbers
// arrive as float64; keep whole numbers free of a trailing ".0".
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
