package resolver

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"adhanclock/internal/config"
	"adhanclock/internal/prayer"
	"adhanclock/internal/prayertimes"
	logx "adhanclock/pkg/logx"
)

// Layers are the settings sources of a run, lowest precedence first.
type Layers struct {
	Persisted config.Record
	File      config.Record
	Flags     config.Record
}

// Merged overlays the layers: flags win over the file, the file over the
// persisted record.
func (l Layers) Merged() config.Record {
	return l.Persisted.Merge(l.File).Merge(l.Flags)
}

type Options struct {
	// Root is the install directory holding playAzaan.sh and the audio files.
	Root string
	Fs   afero.Fs
	Log  logx.Logger
}

// Resolve merges the layers, applies defaults and validates the result.
//
// The returned record is the merged layers with volumes clamped; it holds
// only values some layer set, so defaults are never frozen into storage.
func Resolve(layers Layers, opts Options) (Settings, config.Record, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.Component("resolver")

	rec := layers.Merged()
	clampVolumes(&rec)

	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Settings{}, rec, config.Wrap("root", err)
	}

	s := Settings{
		Root:       absRoot,
		PlayScript: filepath.Join(absRoot, PlayScriptName),
		LogFile:    filepath.Join(absRoot, DefaultLogName),
		CronUser:   deref(rec.CronUser),
	}
	if v := deref(rec.LogFile); v != "" {
		s.LogFile = under(absRoot, v)
	}

	upd := DefaultUpdateTime
	if v := deref(rec.UpdateTime); v != "" {
		upd = v
	}
	if s.UpdateHour, s.UpdateMinute, err = config.ParseTime("update_time", upd); err != nil {
		return Settings{}, rec, err
	}

	if s.Mode, err = selectMode(rec); err != nil {
		return Settings{}, rec, err
	}
	switch s.Mode {
	case ModeMawaqit:
		if err := resolveMawaqit(&s, rec, opts.Fs, log); err != nil {
			return Settings{}, rec, err
		}
	default:
		if err := resolveCalculated(&s, rec); err != nil {
			return Settings{}, rec, err
		}
	}

	if s.Prayers, err = resolvePrayers(rec, absRoot); err != nil {
		return Settings{}, rec, err
	}

	log.Debug("settings resolved",
		logx.String("mode", string(s.Mode)),
		logx.String("update_time", s.UpdateTime()),
		logx.String("log_file", s.LogFile),
	)
	return s, rec, nil
}

func selectMode(rec config.Record) (Mode, error) {
	raw := strings.ToLower(deref(rec.Mode))
	switch raw {
	case "":
		if deref(rec.MawaqitFile) != "" {
			return ModeMawaqit, nil
		}
		return ModeCalculated, nil
	case string(ModeCalculated):
		return ModeCalculated, nil
	case string(ModeMawaqit):
		return ModeMawaqit, nil
	}
	return "", config.Errorf("mode", "unknown mode %q (want calculated or mawaqit)", deref(rec.Mode))
}

func resolveMawaqit(s *Settings, rec config.Record, fs afero.Fs, log logx.Logger) error {
	path := deref(rec.MawaqitFile)
	if path == "" {
		return config.Errorf("mawaqit_file", "mawaqit mode requires a schedule file")
	}
	path = under(s.Root, path)
	f, err := fs.Open(path)
	if err != nil {
		return config.Wrap("mawaqit_file", err)
	}
	st, err := f.Stat()
	_ = f.Close()
	if err != nil {
		return config.Wrap("mawaqit_file", err)
	}
	if st.IsDir() {
		return config.Errorf("mawaqit_file", "%s is a directory", path)
	}
	if rec.HasLocation() {
		log.Warn("location and method are ignored in mawaqit mode", logx.String("mawaqit_file", path))
	}
	s.MawaqitFile = path
	return nil
}

func resolveCalculated(s *Settings, rec config.Record) error {
	if rec.Lat == nil {
		return config.Errorf("lat", "latitude is required in calculated mode")
	}
	if rec.Lng == nil {
		return config.Errorf("lng", "longitude is required in calculated mode")
	}
	if *rec.Lat < -90 || *rec.Lat > 90 {
		return config.Errorf("lat", "latitude %v out of range", *rec.Lat)
	}
	if *rec.Lng < -180 || *rec.Lng > 180 {
		return config.Errorf("lng", "longitude %v out of range", *rec.Lng)
	}
	name := deref(rec.Method)
	if name == "" {
		return config.Errorf("method", "calculation method is required in calculated mode")
	}
	m, err := prayertimes.LookupMethod(name)
	if err != nil {
		return config.Wrap("method", err)
	}
	if s.Asr, err = prayertimes.ParseAsr(deref(rec.Asr)); err != nil {
		return config.Wrap("asr", err)
	}
	if s.HighLats, err = prayertimes.ParseHighLatRule(deref(rec.HighLats)); err != nil {
		return config.Wrap("high_lats", err)
	}
	s.Lat, s.Lng, s.Method = *rec.Lat, *rec.Lng, m
	return nil
}

// resolvePrayers applies the audio cascade (prayer, default_audio, built-in
// file name) and the volume cascade (prayer, default_volume, 100).
func resolvePrayers(rec config.Record, root string) (map[prayer.Name]PrayerSettings, error) {
	byName := make(map[prayer.Name]config.PrayerRecord, len(rec.Prayers))
	keys := make([]string, 0, len(rec.Prayers))
	for k := range rec.Prayers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n, ok := prayer.ParseName(k)
		if !ok {
			return nil, config.Errorf("prayers."+k, "unknown prayer (want one of fajr, dhuhr, asr, maghrib, isha)")
		}
		byName[n] = byName[n].Merged(rec.Prayers[k])
	}

	out := make(map[prayer.Name]PrayerSettings, len(prayer.Order))
	for _, n := range prayer.Order {
		p := byName[n]
		ps := PrayerSettings{Enabled: true, Volume: DefaultVolume}
		if p.Enabled != nil {
			ps.Enabled = *p.Enabled
		}

		audio := DefaultAudio
		if n == prayer.Fajr {
			audio = DefaultFajrAudio
		}
		if v := deref(rec.DefaultAudio); v != "" {
			audio = v
		}
		if v := deref(p.Audio); v != "" {
			audio = v
		}
		ps.Audio = under(root, audio)

		if rec.DefaultVolume != nil {
			ps.Volume = *rec.DefaultVolume
		}
		if p.Volume != nil {
			ps.Volume = *p.Volume
		}
		ps.Volume = config.ClampPercent(ps.Volume)
		out[n] = ps
	}
	return out, nil
}

func clampVolumes(rec *config.Record) {
	if rec.DefaultVolume != nil {
		rec.DefaultVolume = config.Ptr(config.ClampPercent(*rec.DefaultVolume))
	}
	for k, p := range rec.Prayers {
		if p.Volume != nil {
			p.Volume = config.Ptr(config.ClampPercent(*p.Volume))
			rec.Prayers[k] = p
		}
	}
}

func under(root, p string) string {
	p = strings.TrimSpace(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Describe renders a one-line summary of the time source for status output.
func (s Settings) Describe() string {
	if s.Mode == ModeMawaqit {
		return fmt.Sprintf("mawaqit schedule %s", s.MawaqitFile)
	}
	return fmt.Sprintf("calculated (%s, %.4f, %.4f)", s.Method.Name, s.Lat, s.Lng)
}
