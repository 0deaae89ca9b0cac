package detector

import (
	"regexp"
	"strings"
	"time"
)

var earliestBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// validBirthDate accepts real calendar dates in [1900-01-01, today].
func validBirthDate(value string, now time.Time) bool {
	d, err := time.Parse("02/01/2006", value)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(earliestBirthDate) && !d.After(today)
}

// validTaxNumber covers both IFU and the French tax number: 13 digits
// starting with 0 to 3.
func validTaxNumber(value string, _ time.Time) bool {
	return len(value) == 13 && value[0] >= '0' && value[0] <= '3'
}

func validIbanFR(value string, _ time.Time) bool {
	clean := strings.ReplaceAll(value, " ", "")
	return len(clean) == 27 && strings.HasPrefix(clean, "FR")
}

func validPassport(value string, _ time.Time) bool {
	if len(value) < 8 || len(value) > 11 {
		return false
	}
	if !isASCIILetter(value[0]) || !isASCIILetter(value[1]) {
		return false
	}
	return allDigits(value[2:])
}

var secretValuePattern = regexp.MustCompile(`[:=]\s*(.+)$`)

var secretPlaceholders = []string{
	"****", "xxxx", "your_password", "changeme", "example", "null", "none", "false", "true",
}

// validSecret inspects the value after the keyword separator.
func validSecret(value string, _ time.Time) bool {
	m := secretValuePattern.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	secret := strings.TrimSpace(m[1])
	if len(secret) < 4 {
		return false
	}
	for _, p := range secretPlaceholders {
		if strings.EqualFold(secret, p) {
			return false
		}
	}
	return true
}

// IsValidAwsKey reports whether value is shaped like an AWS access key id.
func IsValidAwsKey(value string) bool {
	if !strings.HasPrefix(value, "AKIA") || len(value) != 20 {
		return false
	}
	for i := 4; i < len(value); i++ {
		c := value[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func validAwsKey(value string, _ time.Time) bool {
	return IsValidAwsKey(value)
}

// Numbers that show up in documentation and sample data.
var cnssPlaceholders = map[string]struct{}{
	"12345678901": {},
	"01234567890": {},
	"10987654321": {},
	"00001760268": {},
	"21474836470": {},
}

func validCNSS(value string, _ time.Time) bool {
	if len(value) != 11 || !allDigits(value) {
		return false
	}
	if strings.Count(value, value[:1]) == len(value) {
		return false
	}
	_, placeholder := cnssPlaceholders[value]
	return !placeholder
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
