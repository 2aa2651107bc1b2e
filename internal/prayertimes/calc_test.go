package prayertimes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adhanclock/internal/prayer"
)

func minutesOf(t *testing.T, hhmm string) int {
	t.Helper()
	h, m, err := prayer.ParseClock(hhmm)
	require.NoError(t, err)
	return h*60 + m
}

func assertNear(t *testing.T, want, got string, tolerance int) {
	t.Helper()
	d := minutesOf(t, want) - minutesOf(t, got)
	if d < 0 {
		d = -d
	}
	if d > tolerance {
		t.Fatalf("got %s, want %s (+-%d min)", got, want, tolerance)
	}
}

func TestJulian(t *testing.T) {
	assert.InDelta(t, 2451544.5, julian(2000, 1, 1), 1e-9)
	assert.InDelta(t, 2460310.5, julian(2024, 1, 1), 1e-9)
}

func TestFixHour(t *testing.T) {
	assert.InDelta(t, 23.5, fixHour(-0.5), 1e-9)
	assert.InDelta(t, 1, fixHour(25), 1e-9)
	assert.InDelta(t, 10, fixAngle(370), 1e-9)
}

func TestFormat(t *testing.T) {
	s, err := Format(4.5)
	require.NoError(t, err)
	assert.Equal(t, "04:30", s)

	// rounds to the nearest minute, wrapping past midnight
	s, err = Format(23.999)
	require.NoError(t, err)
	assert.Equal(t, "00:00", s)

	_, err = Format(nan())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestEquatorEquinox(t *testing.T) {
	m, err := LookupMethod("MWL")
	require.NoError(t, err)
	c := Calculator{Lat: 0, Lng: 0, Method: m, Asr: AsrStandard, HighLats: HighLatNightMiddle}

	times, err := c.Times(2024, time.March, 20, 0, false)
	require.NoError(t, err)
	assertNear(t, "12:07", times["dhuhr"], 2)
	assertNear(t, "06:04", times["sunrise"], 3)
	assertNear(t, "18:11", times["sunset"], 3)
}

func TestMakkahMethod(t *testing.T) {
	m, err := LookupMethod("makkah")
	require.NoError(t, err)
	c := Calculator{Lat: 21.4225, Lng: 39.8262, Method: m, Asr: AsrStandard, HighLats: HighLatNightMiddle}

	times, err := c.Times(2024, time.January, 1, 3, false)
	require.NoError(t, err)

	order := []string{"imsak", "fajr", "sunrise", "dhuhr", "asr", "sunset", "maghrib", "isha"}
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, minutesOf(t, times[order[i-1]]), minutesOf(t, times[order[i]]), order[i])
	}
	assertNear(t, "12:24", times["dhuhr"], 3)
	assert.Equal(t, 90, minutesOf(t, times["isha"])-minutesOf(t, times["maghrib"]))
	assert.Equal(t, 10, minutesOf(t, times["fajr"])-minutesOf(t, times["imsak"]))
	assert.Equal(t, times["sunset"], times["maghrib"])
}

func TestHanafiAsrIsLater(t *testing.T) {
	m, err := LookupMethod("Karachi")
	require.NoError(t, err)
	std := Calculator{Lat: 24.86, Lng: 67.0, Method: m, Asr: AsrStandard, HighLats: HighLatNightMiddle}
	han := std
	han.Asr = AsrHanafi

	a, err := std.Times(2024, time.June, 1, 5, false)
	require.NoError(t, err)
	b, err := han.Times(2024, time.June, 1, 5, false)
	require.NoError(t, err)
	assert.Greater(t, minutesOf(t, b["asr"]), minutesOf(t, a["asr"]))
}

func TestHighLatitudeFallback(t *testing.T) {
	m, err := LookupMethod("MWL")
	require.NoError(t, err)
	// Oslo around the summer solstice: the sun never gets 18 degrees below the horizon.
	c := Calculator{Lat: 59.91, Lng: 10.75, Method: m, Asr: AsrStandard, HighLats: HighLatNone}
	_, err = c.Times(2024, time.June, 21, 1, true)
	assert.ErrorIs(t, err, ErrUnreachable)

	c.HighLats = HighLatNightMiddle
	times, err := c.Times(2024, time.June, 21, 1, true)
	require.NoError(t, err)
	assert.Contains(t, times, "fajr")
	assert.Contains(t, times, "isha")
}

func TestSourceToday(t *testing.T) {
	m, err := LookupMethod("Makkah")
	require.NoError(t, err)
	src := NewSource(Calculator{Lat: 21.4225, Lng: 39.8262, Method: m, Asr: AsrStandard, HighLats: HighLatNightMiddle})

	now := time.Date(2024, time.January, 1, 1, 0, 0, 0, time.FixedZone("AST", 3*3600))
	times, err := src.Today(now)
	require.NoError(t, err)
	require.NoError(t, times.Validate())
	assert.Len(t, times, 5)
	assert.NotContains(t, times, prayer.Sunrise)

	direct, err := src.Calc.Times(2024, time.January, 1, 3, false)
	require.NoError(t, err)
	assert.Equal(t, direct["fajr"], times[prayer.Fajr])
}

func TestZoneOffsetDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}
	off, dst := zoneOffset(time.Date(2024, time.July, 1, 12, 0, 0, 0, loc))
	assert.True(t, dst)
	assert.InDelta(t, 0, off, 1e-9)

	off, dst = zoneOffset(time.Date(2024, time.January, 1, 12, 0, 0, 0, loc))
	assert.False(t, dst)
	assert.InDelta(t, 0, off, 1e-9)
}

func TestLookupMethodUnknown(t *testing.T) {
	_, err := LookupMethod("Mars")
	assert.Error(t, err)
	assert.Len(t, MethodNames(), 7)
}

func TestParseTuning(t *testing.T) {
	a, err := ParseAsr("hanafi")
	require.NoError(t, err)
	assert.Equal(t, AsrHanafi, a)
	_, err = ParseAsr("x")
	assert.Error(t, err)

	r, err := ParseHighLatRule("")
	require.NoError(t, err)
	assert.Equal(t, HighLatNightMiddle, r)
	r, err = ParseHighLatRule("oneseventh")
	require.NoError(t, err)
	assert.Equal(t, HighLatOneSeventh, r)
}

func nan() float64 {
	var zero float64
	return zero / zero
}
