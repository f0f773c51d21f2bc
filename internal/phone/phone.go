// internal/phone/phone.go
package phone

import "strings"

const countryCode = "91"

// Candidates returns the ordered list of address formats to try for a raw
// phone number. At least one candidate is always produced. No I/O, fully
// deterministic.
func Candidates(raw string) []string {
	digits := stripNonDigits(raw)

	switch {
	case len(digits) == 10:
		return []string{countryCode + digits}
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return []string{countryCode + digits[1:]}
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
		return []string{digits}
	case len(digits) == 13 && strings.HasPrefix(digits, "0"+countryCode):
		return []string{digits[1:]}
	}

	candidates := []string{digits}
	if !strings.HasPrefix(digits, countryCode) {
		candidates = append(candidates, countryCode+digits)
	}
	return candidates
}

// IsPlausible reports whether raw normalizes to at least one candidate of a
// deliverable length. Used by recipient resolution to filter out junk rows.
func IsPlausible(raw string) bool {
	for _, c := range Candidates(raw) {
		if len(c) >= 7 && len(c) <= 15 {
			return true
		}
	}
	return false
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
