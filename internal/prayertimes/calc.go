// Package prayertimes computes daily prayer times from a location and a
// calculation method.
//
// The astronomy follows the PrayTimes.org (v2) formulas: a low-precision sun
// position, hour-angle solutions for each twilight angle, and the usual
// high-latitude fallbacks.
package prayertimes

import (
	"errors"
	"fmt"
	"math"
	"time"

	"adhanclock/internal/prayer"
)

// Calculator computes prayer times for one location.
type Calculator struct {
	Lat       float64
	Lng       float64
	Elevation float64 // meters

	Method   Method
	Asr      AsrMethod
	HighLats HighLatRule

	// Imsak defaults to 10 minutes before fajr.
	Imsak Param
	// DhuhrOffset delays dhuhr after solar noon, in minutes.
	DhuhrOffset float64
}

// ErrUnreachable is returned when the sun never reaches a required angle and
// no high-latitude rule can substitute a time.
var ErrUnreachable = errors.New("prayer time not reachable at this latitude")

// Result holds every computed time as fractional local hours.
type Result struct {
	Imsak, Fajr, Sunrise, Dhuhr, Asr, Sunset, Maghrib, Isha, Midnight float64
}

// Format renders a fractional hour as "HH:MM", rounded to the nearest minute.
func Format(h float64) (string, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return "", ErrUnreachable
	}
	h = fixHour(h + 0.5/60)
	hours := math.Floor(h)
	minutes := math.Floor((h - hours) * 60)
	return prayer.FormatClock(int(hours), int(minutes)), nil
}

// Compute returns the times for the given calendar date. utcOffset is the
// standard (non-DST) offset in hours; dst adds one hour on top of it.
func (c *Calculator) Compute(year int, month time.Month, day int, utcOffset float64, dst bool) Result {
	tz := utcOffset
	if dst {
		tz++
	}
	s := solver{c: c, jDate: julian(year, int(month), day) - c.Lng/(15*24)}

	t := Result{Imsak: 5, Fajr: 5, Sunrise: 6, Dhuhr: 12, Asr: 13, Sunset: 18, Maghrib: 18, Isha: 18}
	t = s.computePrayerTimes(t)
	t = s.adjustTimes(t, tz)

	if c.Method.Midnight == "Jafari" {
		t.Midnight = t.Sunset + timeDiff(t.Sunset, t.Fajr)/2
	} else {
		t.Midnight = t.Sunset + timeDiff(t.Sunset, t.Sunrise)/2
	}
	return t
}

// Times computes and formats the set of named times for a date. The map
// includes sunrise, sunset, imsak and midnight besides the five prayers.
func (c *Calculator) Times(year int, month time.Month, day int, utcOffset float64, dst bool) (map[string]string, error) {
	r := c.Compute(year, month, day, utcOffset, dst)
	raw := []struct {
		name string
		v    float64
	}{
		{"imsak", r.Imsak}, {"fajr", r.Fajr}, {"sunrise", r.Sunrise}, {"dhuhr", r.Dhuhr},
		{"asr", r.Asr}, {"sunset", r.Sunset}, {"maghrib", r.Maghrib}, {"isha", r.Isha},
		{"midnight", r.Midnight},
	}
	out := make(map[string]string, len(raw))
	for _, x := range raw {
		s, err := Format(x.v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", x.name, err)
		}
		out[x.name] = s
	}
	return out, nil
}

type solver struct {
	c     *Calculator
	jDate float64
}

func (s solver) computePrayerTimes(t Result) Result {
	c := s.c
	d := dayPortion(t)
	rise := riseSetAngle(c.Elevation)
	return Result{
		Imsak:   s.sunAngleTime(c.imsak().Value, d.Imsak, true),
		Fajr:    s.sunAngleTime(c.Method.Fajr.Value, d.Fajr, true),
		Sunrise: s.sunAngleTime(rise, d.Sunrise, true),
		Dhuhr:   s.midDay(d.Dhuhr),
		Asr:     s.asrTime(c.Asr.factor(), d.Asr),
		Sunset:  s.sunAngleTime(rise, d.Sunset, false),
		Maghrib: s.sunAngleTime(c.Method.Maghrib.Value, d.Maghrib, false),
		Isha:    s.sunAngleTime(c.Method.Isha.Value, d.Isha, false),
	}
}

func (s solver) adjustTimes(t Result, tz float64) Result {
	c := s.c
	shift := tz - c.Lng/15
	t.Imsak += shift
	t.Fajr += shift
	t.Sunrise += shift
	t.Dhuhr += shift
	t.Asr += shift
	t.Sunset += shift
	t.Maghrib += shift
	t.Isha += shift

	if c.HighLats != HighLatNone {
		t = s.adjustHighLats(t)
	}

	if p := c.imsak(); p.Minutes {
		t.Imsak = t.Fajr - p.Value/60
	}
	if c.Method.Maghrib.Minutes {
		t.Maghrib = t.Sunset + c.Method.Maghrib.Value/60
	}
	if c.Method.Isha.Minutes {
		t.Isha = t.Maghrib + c.Method.Isha.Value/60
	}
	t.Dhuhr += c.DhuhrOffset / 60
	return t
}

func (s solver) adjustHighLats(t Result) Result {
	c := s.c
	night := timeDiff(t.Sunset, t.Sunrise)
	t.Imsak = s.adjustHLTime(t.Imsak, t.Sunrise, c.imsak().Value, night, true)
	t.Fajr = s.adjustHLTime(t.Fajr, t.Sunrise, c.Method.Fajr.Value, night, true)
	t.Isha = s.adjustHLTime(t.Isha, t.Sunset, c.Method.Isha.Value, night, false)
	t.Maghrib = s.adjustHLTime(t.Maghrib, t.Sunset, c.Method.Maghrib.Value, night, false)
	return t
}

func (s solver) adjustHLTime(tm, base, angle, night float64, ccw bool) float64 {
	portion := s.nightPortion(angle, night)
	var diff float64
	if ccw {
		diff = timeDiff(tm, base)
	} else {
		diff = timeDiff(base, tm)
	}
	if math.IsNaN(tm) || diff > portion {
		if ccw {
			return base - portion
		}
		return base + portion
	}
	return tm
}

func (s solver) nightPortion(angle, night float64) float64 {
	portion := 1.0 / 2
	switch s.c.HighLats {
	case HighLatAngleBased:
		portion = angle / 60
	case HighLatOneSeventh:
		portion = 1.0 / 7
	}
	return portion * night
}

// midDay returns solar noon for the given day portion.
func (s solver) midDay(tm float64) float64 {
	_, eqt := sunPosition(s.jDate + tm)
	return fixHour(12 - eqt)
}

// sunAngleTime returns when the sun reaches angle degrees below the horizon,
// before noon when ccw is set.
func (s solver) sunAngleTime(angle, tm float64, ccw bool) float64 {
	decl, _ := sunPosition(s.jDate + tm)
	noon := s.midDay(tm)
	lat := s.c.Lat
	t := arccos((-dsin(angle)-dsin(decl)*dsin(lat))/(dcos(decl)*dcos(lat))) / 15
	if ccw {
		return noon - t
	}
	return noon + t
}

// asrTime solves for the shadow length factor (1 standard, 2 Hanafi).
func (s solver) asrTime(factor, tm float64) float64 {
	decl, _ := sunPosition(s.jDate + tm)
	angle := -arccot(factor + dtan(math.Abs(s.c.Lat-decl)))
	return s.sunAngleTime(angle, tm, false)
}

func (c *Calculator) imsak() Param {
	if c.Imsak == (Param{}) {
		return Minutes(10)
	}
	return c.Imsak
}

// sunPosition returns the sun's declination and the equation of time for a
// Julian date.
func sunPosition(jd float64) (declination, equation float64) {
	d := jd - 2451545.0
	g := fixAngle(357.529 + 0.98560028*d)
	q := fixAngle(280.459 + 0.98564736*d)
	l := fixAngle(q + 1.915*dsin(g) + 0.020*dsin(2*g))

	e := 23.439 - 0.00000036*d
	ra := arctan2(dcos(e)*dsin(l), dcos(l)) / 15

	equation = q/15 - fixHour(ra)
	declination = arcsin(dsin(e) * dsin(l))
	return declination, equation
}

// julian converts a Gregorian date to a Julian day number.
func julian(year, month, day int) float64 {
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(year+4716)) + math.Floor(30.6001*float64(month+1)) + float64(day) + b - 1524.5
}

func riseSetAngle(elevation float64) float64 {
	return 0.833 + 0.0347*math.Sqrt(math.Max(elevation, 0))
}

func dayPortion(t Result) Result {
	return Result{
		Imsak: t.Imsak / 24, Fajr: t.Fajr / 24, Sunrise: t.Sunrise / 24, Dhuhr: t.Dhuhr / 24,
		Asr: t.Asr / 24, Sunset: t.Sunset / 24, Maghrib: t.Maghrib / 24, Isha: t.Isha / 24,
	}
}

func timeDiff(t1, t2 float64) float64 { return fixHour(t2 - t1) }

// ---- degree math ----

func dtr(d float64) float64 { return d * math.Pi / 180 }
func rtd(r float64) float64 { return r * 180 / math.Pi }

func dsin(d float64) float64 { return math.Sin(dtr(d)) }
func dcos(d float64) float64 { return math.Cos(dtr(d)) }
func dtan(d float64) float64 { return math.Tan(dtr(d)) }

func arcsin(x float64) float64     { return rtd(math.Asin(x)) }
func arccos(x float64) float64     { return rtd(math.Acos(x)) }
func arccot(x float64) float64     { return rtd(math.Atan(1 / x)) }
func arctan2(y, x float64) float64 { return rtd(math.Atan2(y, x)) }

func fixAngle(a float64) float64 { return fix(a, 360) }
func fixHour(a float64) float64  { return fix(a, 24) }

func fix(a, b float64) float64 {
	a = a - b*math.Floor(a/b)
	if a < 0 {
		return a + b
	}
	return a
}
