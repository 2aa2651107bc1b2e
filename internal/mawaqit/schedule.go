// Package mawaqit reads pre-published mosque schedules and talks to the
// mawaqit directory service.
package mawaqit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"adhanclock/internal/prayer"
)

// Document is a published yearly schedule:
//
//	{ "calendar": [ { "1": ["05:40","07:01","12:24","15:27","17:48","19:18"], ... }, ... ] }
//
// calendar holds 12 month objects (index 0 is January); each maps the
// 1-based day of month to [fajr, sunrise, dhuhr, asr, maghrib, isha].
// Other top-level keys of the service response are ignored.
type Document struct {
	Calendar []map[string][]string `json:"calendar"`
}

// slot order inside a day entry
var daySlots = []prayer.Name{prayer.Fajr, prayer.Sunrise, prayer.Dhuhr, prayer.Asr, prayer.Maghrib, prayer.Isha}

// ParseDocument decodes a schedule document.
func ParseDocument(b []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode schedule document: %w", err)
	}
	return &doc, nil
}

// Lookup returns the five prayer times for month/day (month 1-12).
func (d *Document) Lookup(month time.Month, day int) (prayer.Times, error) {
	fail := func(format string, args ...any) error {
		return &ScheduleLookupError{Month: int(month), Day: day, Reason: fmt.Sprintf(format, args...)}
	}
	if d == nil || d.Calendar == nil {
		return nil, fail("document has no calendar")
	}
	idx := int(month) - 1
	if idx < 0 || idx >= len(d.Calendar) || d.Calendar[idx] == nil {
		return nil, fail("calendar does not cover month %d (has %d months)", int(month), len(d.Calendar))
	}
	entry, ok := d.Calendar[idx][strconv.Itoa(day)]
	if !ok {
		return nil, fail("no entry for day %d", day)
	}
	if len(entry) != len(daySlots) {
		return nil, fail("day entry has %d times, want %d", len(entry), len(daySlots))
	}

	out := make(prayer.Times, len(prayer.Order))
	for i, name := range daySlots {
		if name == prayer.Sunrise {
			continue
		}
		h, m, err := prayer.ParseClock(entry[i])
		if err != nil {
			return nil, fail("%s: %v", name, err)
		}
		out[name] = prayer.FormatClock(h, m)
	}
	return out, nil
}

// Schedule is the fixed-schedule prayer.Source backed by a document file.
// The file is read on every call so a refreshed download is picked up.
type Schedule struct {
	fs   afero.Fs
	path string
}

func NewSchedule(fs afero.Fs, path string) *Schedule {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Schedule{fs: fs, path: path}
}

func (s *Schedule) Path() string { return s.path }

// Today looks up the local date of now.
func (s *Schedule) Today(now time.Time) (prayer.Times, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", s.path, err)
	}
	doc, err := ParseDocument(b)
	if err != nil {
		return nil, &ScheduleLookupError{Month: int(now.Month()), Day: now.Day(), Reason: err.Error()}
	}
	return doc.Lookup(now.Month(), now.Day())
}
