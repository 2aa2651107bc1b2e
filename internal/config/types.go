package config

// Config is the on-disk JSON (or YAML) configuration.
//
// Example:
//
//	{
//	  "general": {
//	    "mode": "calculated",
//	    "location": { "lat": 21.4, "lng": 39.8 },
//	    "method": "Makkah",
//	    "update_time": "03:15"
//	  },
//	  "prayers": { "fajr": { "enabled": true, "audio": "Adhan-fajr.mp3", "volume": 80 } }
//	}
type Config struct {
	General GeneralConfig           `json:"general"`
	Prayers map[string]PrayerConfig `json:"prayers,omitempty"`
	Logging LoggingConfig           `json:"logging,omitempty"`
	Storage *StorageConfig          `json:"storage,omitempty"`
}

type GeneralConfig struct {
	// Mode is "calculated" or "mawaqit". Empty means: mawaqit when
	// MawaqitFile is set, calculated otherwise.
	Mode     string    `json:"mode,omitempty"`
	Location *Location `json:"location,omitempty"`
	Method   string    `json:"method,omitempty"`

	DefaultAudio  string `json:"default_audio,omitempty"`
	DefaultVolume *int   `json:"default_volume,omitempty"`

	LogFile    string `json:"log_file,omitempty"`
	UpdateTime string `json:"update_time,omitempty"` // HH:MM, default 03:15

	MawaqitFile string `json:"mawaqit_file,omitempty"`

	// Calculation tuning (calculated mode only).
	Asr      string `json:"asr,omitempty"`       // Standard | Hanafi
	HighLats string `json:"high_lats,omitempty"` // NightMiddle | AngleBased | OneSeventh | None

	CronUser string `json:"cron_user,omitempty"`

	// Root overrides the install root (directory holding playAzaan.sh and the audio files).
	Root string `json:"root,omitempty"`
}

type Location struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

type PrayerConfig struct {
	// Enabled is a pointer so we can distinguish "omitted" (keep previous/default)
	// from an explicit false.
	Enabled *bool  `json:"enabled,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Volume  *int   `json:"volume,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
	Journal bool        `json:"journal,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig selects where merged settings are persisted between runs.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./adhanclock.db" }
type StorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path,omitempty"`
}

// Record converts the file config into a settings layer.
// Empty strings are treated as "not set".
func (c *Config) Record() Record {
	if c == nil {
		return Record{Version: RecordVersion}
	}
	g := c.General
	r := Record{
		Version:       RecordVersion,
		Mode:          optString(g.Mode),
		Method:        optString(g.Method),
		MawaqitFile:   optString(g.MawaqitFile),
		DefaultAudio:  optString(g.DefaultAudio),
		DefaultVolume: g.DefaultVolume,
		LogFile:       optString(g.LogFile),
		UpdateTime:    optString(g.UpdateTime),
		Asr:           optString(g.Asr),
		HighLats:      optString(g.HighLats),
		CronUser:      optString(g.CronUser),
	}
	if g.Location != nil {
		r.Lat = g.Location.Lat
		r.Lng = g.Location.Lng
	}
	for name, p := range c.Prayers {
		r.SetPrayer(name, PrayerRecord{Enabled: p.Enabled, Audio: optString(p.Audio), Volume: p.Volume})
	}
	return r
}
