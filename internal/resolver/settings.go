// Package resolver merges the settings layers of a run into one validated
// schedule configuration.
package resolver

import (
	"github.com/spf13/afero"

	"adhanclock/internal/mawaqit"
	"adhanclock/internal/prayer"
	"adhanclock/internal/prayertimes"
)

type Mode string

const (
	ModeCalculated Mode = "calculated"
	ModeMawaqit    Mode = "mawaqit"
)

const (
	DefaultUpdateTime = "03:15"
	DefaultVolume     = 100
	DefaultFajrAudio  = "Adhan-fajr.mp3"
	DefaultAudio      = "Adhan-Madinah.mp3"
	DefaultLogName    = "adhan.log"
	PlayScriptName    = "playAzaan.sh"
)

type PrayerSettings struct {
	Enabled bool
	Audio   string // absolute
	Volume  int    // 0-100
}

// Settings is the authoritative configuration of one run.
type Settings struct {
	Mode Mode

	// calculated mode
	Lat, Lng float64
	Method   prayertimes.Method
	Asr      prayertimes.AsrMethod
	HighLats prayertimes.HighLatRule

	// mawaqit mode
	MawaqitFile string

	Prayers map[prayer.Name]PrayerSettings

	UpdateHour   int
	UpdateMinute int

	Root       string
	PlayScript string
	LogFile    string
	CronUser   string
}

// Source returns the time source selected by Mode.
func (s Settings) Source(fs afero.Fs) prayer.Source {
	if s.Mode == ModeMawaqit {
		return mawaqit.NewSchedule(fs, s.MawaqitFile)
	}
	return prayertimes.NewSource(prayertimes.Calculator{
		Lat:      s.Lat,
		Lng:      s.Lng,
		Method:   s.Method,
		Asr:      s.Asr,
		HighLats: s.HighLats,
	})
}

// UpdateTime returns the refresh time as HH:MM.
func (s Settings) UpdateTime() string { return prayer.FormatClock(s.UpdateHour, s.UpdateMinute) }
