// Package mask normalizes free-form identity input into canonical strings.
// All functions are pure, never fail, and return the best-effort normalized
// form of whatever they are given.
package mask

import "strings"

// NormalizeDocument strips everything but digits and applies the
// XXX.XXX.XXX-XX grouping progressively as digits accumulate, so partial
// input yields a partial mask. Inputs with more than 11 digits are
// truncated to 11. Idempotent: feeding the output back in returns it
// unchanged.
func NormalizeDocument(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > 11 {
		d = d[:11]
	}

	var out strings.Builder
	for i := 0; i < len(d); i++ {
		switch i {
		case 3, 6:
			out.WriteByte('.')
		case 9:
			out.WriteByte('-')
		}
		out.WriteByte(d[i])
	}
	return out.String()
}

// NormalizePlate uppercases, strips non-alphanumerics, inserts a hyphen
// after the third character when the first three are letters, and truncates
// to 8 characters total (AAA-9999).
func NormalizePlate(raw string) string {
	var clean strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			clean.WriteRune(r)
		}
	}
	s := clean.String()

	if len(s) > 3 && isLetters(s[:3]) {
		s = s[:3] + "-" + s[3:]
	}
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
