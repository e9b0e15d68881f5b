package pipeline

import (
	"strings"
)

const countryCode = "82"

// NormalizePhone rewrites a contact number into DDD-DDDD-DDDD (11 digits) or
// DDD-DDD-DDDD (10 digits starting with 0). Values of any other shape are
// returned unchanged.
//
// A bare 10-digit number that does not start with 0 is treated as a mobile
// number that lost its leading zero, so "1012345678" becomes "010-1234-5678".
func NormalizePhone(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	digits := nationalDigits(value)

	if len(digits) == 10 && digits[0] != '0' {
		digits = "0" + digits
	}

	switch {
	case len(digits) == 11:
		return digits[0:3] + "-" + digits[3:7] + "-" + digits[7:11]
	case len(digits) == 10:
		return digits[0:3] + "-" + digits[3:6] + "-" + digits[6:10]
	default:
		return raw
	}
}

// nationalDigits strips everything but digits and replaces a leading +82 / 82
// country code with the domestic trunk prefix 0.
func nationalDigits(value string) string {
	if rest, ok := strings.CutPrefix(value, "+"+countryCode); ok {
		rest = digitsOnly(rest)
		return "0" + strings.TrimPrefix(rest, "0")
	}

	digits := digitsOnly(value)
	if rest, ok := strings.CutPrefix(digits, countryCode); ok && (len(rest) == 9 || len(rest) == 10) {
		return "0" + rest
	}

	return digits
}

func digitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
