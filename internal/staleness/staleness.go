// Package staleness classifies files by how long ago they were last opened.
package staleness

import (
	"fmt"
	"time"
)

// Level is an ordered staleness bucket; higher is older.
type Level int

const (
	Recent Level = iota
	SixMonths
	OneYear
	ThreeYears
	FiveYears
)

const day = 24 * time.Hour

// LevelOf buckets lastAccessed relative to now. A zero time means the
// access date is unknown and is treated as Recent.
func LevelOf(lastAccessed, now time.Time) Level {
	if lastAccessed.IsZero() {
		return Recent
	}
	age := now.Sub(lastAccessed)
	switch {
	case age < 180*day:
		return Recent
	case age < 365*day:
		return SixMonths
	case age < 1095*day:
		return OneYear
	case age < 1825*day:
		return ThreeYears
	default:
		return FiveYears
	}
}

var labels = map[Level]string{
	Recent:     "Récent",
	SixMonths:  "6 mois",
	OneYear:    "1 an",
	ThreeYears: "3 ans",
	FiveYears:  "+5 ans",
}

// Label returns the display label of a level.
func Label(l Level) string {
	if s, ok := labels[l]; ok {
		return s
	}
	return "Inconnu"
}

func (l Level) String() string {
	return Label(l)
}

// Message builds the warning shown for a file holding piiCount findings that
// has not been opened for a while. It is empty for Recent or unknown dates.
func Message(piiCount int, lastAccessed, now time.Time) string {
	if LevelOf(lastAccessed, now) == Recent {
		return ""
	}

	days := int(now.Sub(lastAccessed) / day)
	years := days / 365
	months := days / 30

	prefix := fmt.Sprintf("Ce fichier contient %d PII mais n'a pas été ouvert depuis", piiCount)
	switch {
	case years >= 5:
		return prefix + " plus de 5 ans"
	case years > 1:
		return fmt.Sprintf("%s %d ans", prefix, years)
	case years == 1:
		return prefix + " 1 an"
	case months >= 6:
		return fmt.Sprintf("%s %d mois", prefix, months)
	default:
		return ""
	}
}
