package whatsapp

import "strings"

// defaultCountryCode is prefixed to bare ten digit numbers.
const defaultCountryCode = "91"

// NormalizePhone reduces a WhatsApp address to its digits. Provider
// prefixes such as "whatsapp:" and suffixes such as "@c.us" are dropped.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.ToLower(raw), "whatsapp:")
	if idx := strings.IndexByte(raw, '@'); idx >= 0 {
		raw = raw[:idx]
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		return defaultCountryCode + digits
	}
	return digits
}

// E164 formats a normalized number with a leading plus.
func E164(raw string) string {
	digits := NormalizePhone(raw)
	if digits == "" {
		return ""
	}
	return "+" + digits
}
