// Package prayer holds the prayer names and the daily times type shared by
// the time sources and the schedule installer.
package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Name string

const (
	Fajr    Name = "fajr"
	Sunrise Name = "sunrise"
	Dhuhr   Name = "dhuhr"
	Asr     Name = "asr"
	Maghrib Name = "maghrib"
	Isha    Name = "isha"
)

// Order is the canonical order of the five daily prayers.
var Order = []Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

// ParseName accepts a prayer name in any case and the common "zuhr"/"duhr" spellings.
func ParseName(s string) (Name, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fajr":
		return Fajr, true
	case "dhuhr", "zuhr", "duhr":
		return Dhuhr, true
	case "asr":
		return Asr, true
	case "maghrib":
		return Maghrib, true
	case "isha":
		return Isha, true
	}
	return "", false
}

// Times maps each prayer to an "HH:MM" local time for one day.
type Times map[Name]string

// Validate checks that all five prayers are present and well formed.
func (t Times) Validate() error {
	for _, n := range Order {
		v, ok := t[n]
		if !ok {
			return fmt.Errorf("missing time for %s", n)
		}
		if _, _, err := ParseClock(v); err != nil {
			return fmt.Errorf("%s: %w", n, err)
		}
	}
	return nil
}

// Source produces the prayer times for the local date of now.
type Source interface {
	Today(now time.Time) (Times, error)
}

// ParseClock parses "HH:MM" with hour 0..23 and minute 0..59. The hour is
// one or two digits and the minute exactly two; signs are rejected.
func ParseClock(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if !digits(hh) {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	if !digits(mm) {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	if m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders hour and minute as "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
