package config

import (
	"strconv"
	"strings"

	"adhanclock/internal/prayer"
)

// ClampPercent forces v into [0, 100].
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ParseVolume parses a volume percentage given as text (flags, legacy CSV).
// Non-numeric input is a ConfigError; numeric input is clamped.
func ParseVolume(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, Errorf(field, "invalid volume %q (want an integer percent 0-100)", raw)
	}
	return ClampPercent(v), nil
}

// ParseTime parses an HH:MM wall-clock time.
func ParseTime(field, raw string) (hour, minute int, err error) {
	h, m, err := prayer.ParseClock(raw)
	if err != nil {
		return 0, 0, Wrap(field, err)
	}
	return h, m, nil
}
