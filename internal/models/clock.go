package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

var ErrInvalidClock = errors.New("invalid time format (HH:mm)")

// ParseClock returns the minutes since midnight for an "H:mm" or "HH:mm" value.
func ParseClock(raw string) (int, error) {
	matches := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if len(matches) != 3 {
		return 0, ErrInvalidClock
	}
	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:mm", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock rewrites a valid clock value to its zero-padded form.
func NormalizeClock(raw string) (string, error) {
	minutes, err := ParseClock(raw)
	if err != nil {
		return "", err
	}
	return FormatClock(minutes), nil
}
