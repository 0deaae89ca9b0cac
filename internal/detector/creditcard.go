package detector

import (
	"strings"
	"time"
)

// validCard strips separators, requires exactly 16 digits and checks Luhn.
func validCard(value string, _ time.Time) bool {
	clean := stripSeparators(value, " ", "-")
	if len(clean) != 16 || !allDigits(clean) {
		return false
	}
	return luhnCheck(clean)
}

// luhnCheck implements the Luhn algorithm for card number validation
func luhnCheck(cc string) bool {
	sum := 0
	alternate := false
	for i := len(cc) - 1; i >= 0; i-- {
		n := int(cc[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}

func stripSeparators(s string, seps ...string) string {
	for _, sep := range seps {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
