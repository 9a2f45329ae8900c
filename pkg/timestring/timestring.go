// Package timestring parses compact duration strings such as "10d", "1h"
// or "30m" as used in threshold and message-frequency settings.
package timestring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for strings that cannot be parsed.
var ErrInvalidDuration = errors.New("invalid duration string")

// unit multipliers in seconds.
const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
)

// Parse converts a duration string into a time.Duration.
// Supported suffixes: "d" (days), "h" (hours), "m" (minutes), "s" (seconds).
// A bare number is interpreted as seconds.
func Parse(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}

	multiplier := float64(1)
	magnitude := trimmed

	last := trimmed[len(trimmed)-1]
	switch last {
	case 'd', 'D':
		multiplier = secondsPerDay
		magnitude = trimmed[:len(trimmed)-1]
	case 'h', 'H':
		multiplier = secondsPerHour
		magnitude = trimmed[:len(trimmed)-1]
	case 'm', 'M':
		multiplier = secondsPerMinute
		magnitude = trimmed[:len(trimmed)-1]
	case 's', 'S':
		magnitude = trimmed[:len(trimmed)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(magnitude), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative duration %q", ErrInvalidDuration, s)
	}

	return time.Duration(value * multiplier * float64(time.Second)), nil
}

// Seconds parses a duration string and returns its length in seconds.
func Seconds(s string) (float64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}
