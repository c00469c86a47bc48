package reminder

import (
	"errors"
	"time"
)

// TimeLayout is the HH:MM layout used for stored and compared times.
const TimeLayout = "15:04"

// ErrInvalidTime is returned when a string is not a valid HH:MM time of day.
var ErrInvalidTime = errors.New("invalid time of day, expected HH:MM")

// ValidTimeOfDay reports whether s is exactly two digit hours (00-23), a colon,
// and two digit minutes (00-59).
func ValidTimeOfDay(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}

	hour, ok := twoDigits(s[0], s[1])
	if !ok || hour > 23 {
		return false
	}

	minute, ok := twoDigits(s[3], s[4])
	if !ok || minute > 59 {
		return false
	}

	return true
}

// ParseTimeOfDay returns s unchanged when it is a valid time of day.
func ParseTimeOfDay(s string) (string, error) {
	if !ValidTimeOfDay(s) {
		return "", ErrInvalidTime
	}
	return s, nil
}

// FormatTimeOfDay formats t as HH:MM in t's location. Seconds are dropped.
func FormatTimeOfDay(t time.Time) string {
	return t.Format(TimeLayout)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
