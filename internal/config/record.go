package config

import "strings"

// RecordVersion is the current persisted settings schema.
//
// Version 1 is the legacy positional CSV line
// (lat,lng,method,fajr_volume,azaan_volume[,fajr_audio,azaan_audio[,mawaqit_file]]);
// it is only ever read, and is migrated to the current version on save.
const RecordVersion = 2

// Record is one layer of settings. Every field is optional; nil means
// "not set by this layer". The same shape is used for the persisted record,
// the config file and command-line flags, so layers merge uniformly.
type Record struct {
	Version int `json:"version"`

	Mode        *string  `json:"mode,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Method      *string  `json:"method,omitempty"`
	MawaqitFile *string  `json:"mawaqit_file,omitempty"`

	DefaultAudio  *string `json:"default_audio,omitempty"`
	DefaultVolume *int    `json:"default_volume,omitempty"`

	LogFile    *string `json:"log_file,omitempty"`
	UpdateTime *string `json:"update_time,omitempty"`

	Asr      *string `json:"asr,omitempty"`
	HighLats *string `json:"high_lats,omitempty"`
	CronUser *string `json:"cron_user,omitempty"`

	Prayers map[string]PrayerRecord `json:"prayers,omitempty"`
}

type PrayerRecord struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Audio   *string `json:"audio,omitempty"`
	Volume  *int    `json:"volume,omitempty"`
}

// SetPrayer merges p into the entry for name (case-insensitive).
func (r *Record) SetPrayer(name string, p PrayerRecord) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if r.Prayers == nil {
		r.Prayers = map[string]PrayerRecord{}
	}
	r.Prayers[name] = r.Prayers[name].Merged(p)
}

// Merge returns r overlaid with every field set in over.
func (r Record) Merge(over Record) Record {
	out := r
	out.Version = RecordVersion
	pick(&out.Mode, over.Mode)
	pick(&out.Lat, over.Lat)
	pick(&out.Lng, over.Lng)
	pick(&out.Method, over.Method)
	pick(&out.MawaqitFile, over.MawaqitFile)
	pick(&out.DefaultAudio, over.DefaultAudio)
	pick(&out.DefaultVolume, over.DefaultVolume)
	pick(&out.LogFile, over.LogFile)
	pick(&out.UpdateTime, over.UpdateTime)
	pick(&out.Asr, over.Asr)
	pick(&out.HighLats, over.HighLats)
	pick(&out.CronUser, over.CronUser)

	out.Prayers = nil
	for name, p := range r.Prayers {
		out.SetPrayer(name, p)
	}
	for name, p := range over.Prayers {
		out.SetPrayer(name, p)
	}
	return out
}

// HasLocation reports whether any calculation input is set.
func (r Record) HasLocation() bool {
	return r.Lat != nil || r.Lng != nil || (r.Method != nil && strings.TrimSpace(*r.Method) != "")
}

// Merged returns p overlaid with every field set in over.
func (p PrayerRecord) Merged(over PrayerRecord) PrayerRecord {
	out := p
	pick(&out.Enabled, over.Enabled)
	pick(&out.Audio, over.Audio)
	pick(&out.Volume, over.Volume)
	return out
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Ptr returns a pointer to v. Handy for building records.
func Ptr[T any](v T) *T { return &v }
