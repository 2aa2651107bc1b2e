package prayertimes

import (
	"time"

	"adhanclock/internal/prayer"
)

// Source is the calculated prayer.Source: it derives the UTC offset and the
// DST flag from the zone of the time it is asked about.
type Source struct {
	Calc Calculator
}

func NewSource(c Calculator) *Source { return &Source{Calc: c} }

// Today computes the five prayer times for the local date of now.
func (s *Source) Today(now time.Time) (prayer.Times, error) {
	offset, dst := zoneOffset(now)
	all, err := s.Calc.Times(now.Year(), now.Month(), now.Day(), offset, dst)
	if err != nil {
		return nil, err
	}
	out := make(prayer.Times, len(prayer.Order))
	for _, n := range prayer.Order {
		out[n] = all[string(n)]
	}
	return out, nil
}

// zoneOffset returns the standard (non-DST) UTC offset in hours and whether
// DST is in effect at t.
func zoneOffset(t time.Time) (float64, bool) {
	_, secs := t.Zone()
	dst := t.IsDST()
	if dst {
		secs -= 3600
	}
	return float64(secs) / 3600, dst
}
