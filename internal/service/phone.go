package service

import "strings"

const phoneDelimiters = "/;,| \t"

// NormalizePhone parses a raw phone field into an E.164 primary number
// and an optional secondary number. The scraper's phone column sometimes
// holds two numbers separated by a delimiter, and sometimes two numbers
// run straight together with no delimiter at all. Never fails; malformed
// input yields an empty primary.
func NormalizePhone(raw string) (primary, secondary string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	if i := strings.IndexAny(raw, phoneDelimiters); i >= 0 {
		primary = formatE164(digitsOf(raw[:i]))
		secondary = formatE164(digitsOf(raw[i+1:]))
		if primary != "" {
			return primary, secondary
		}
		// Delimiter inside a single formatted number, e.g. "(856) 780-5758".
		// Fall through and treat the whole string as one number.
	}

	digits := digitsOf(raw)
	if len(digits) >= 15 {
		// Possibly two undelimited national numbers. Try splitting at
		// offset 10 and 11 (leading country-code digit on either half)
		// and accept only if both halves stand alone.
		for _, cut := range []int{10, 11} {
			if cut >= len(digits) {
				continue
			}
			head, tail := digits[:cut], digits[cut:]
			if isNationalNumber(head) && isNationalNumber(tail) {
				return formatE164(head), formatE164(tail)
			}
		}
	}
	return formatE164(digits), ""
}

// isNationalNumber reports whether a digit run is a plausible standalone
// US/CA number: 10 digits, or 11 digits with a leading country code 1.
func isNationalNumber(digits string) bool {
	if len(digits) == 10 {
		return true
	}
	return len(digits) == 11 && digits[0] == '1'
}

// formatE164 renders a digit run in E.164. Runs under 10 digits are
// rejected; runs over 15 digits keep only the leading national number.
func formatE164(digits string) string {
	if len(digits) > 15 {
		if digits[0] == '1' {
			digits = digits[:11]
		} else {
			digits = digits[:10]
		}
	}
	switch {
	case len(digits) < 10:
		return ""
	case len(digits) == 10:
		return "+1" + digits
	default:
		return "+" + digits
	}
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
