package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"adhanclock/internal/config"
	logx "adhanclock/pkg/logx"
)

// fileStore keeps everything next to the configured path.
//
// Files:
//   - <path>.json        (current record, replaced atomically)
//   - <path>.runs.jsonl  (append-only JSON Lines)
//   - <path>             (legacy CSV, read only)
type fileStore struct {
	fs  afero.Fs
	log logx.Logger

	mu sync.Mutex

	legacyPath string
	recordPath string
	runsPath   string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileStore{
		fs:         fs,
		log:        log,
		legacyPath: path,
		recordPath: path + ".json",
		runsPath:   path + ".runs.jsonl",
	}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LoadSettings(ctx context.Context) (config.Record, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := afero.ReadFile(s.fs, s.recordPath)
	switch {
	case err == nil:
		var rec config.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return config.Record{}, false, fmt.Errorf("decode %s: %w", s.recordPath, err)
		}
		if err := checkVersion(rec.Version); err != nil {
			return config.Record{}, false, fmt.Errorf("%s: %w", s.recordPath, err)
		}
		return rec, true, nil
	case !errors.Is(err, os.ErrNotExist):
		return config.Record{}, false, err
	}

	b, err = afero.ReadFile(s.fs, s.legacyPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Record{}, false, nil
	}
	if err != nil {
		return config.Record{}, false, err
	}
	rec, err := ParseLegacy(b)
	if err != nil {
		return config.Record{}, false, fmt.Errorf("%s: %w", s.legacyPath, err)
	}
	s.log.Info("legacy settings found; migrating on next save", logx.String("path", s.legacyPath))
	return rec, true, nil
}

func (s *fileStore) SaveSettings(ctx context.Context, rec config.Record) error {
	_ = ctx
	rec.Version = config.RecordVersion
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.recordPath + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o600); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, s.recordPath); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	s.log.Debug("settings saved", logx.String("path", s.recordPath))
	return nil
}

func (s *fileStore) AppendRun(ctx context.Context, e RunEntry) error {
	_ = ctx
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.fs.OpenFile(s.runsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(e); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *fileStore) LastRun(ctx context.Context) (RunEntry, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := afero.ReadFile(s.fs, s.runsPath)
	if errors.Is(err, os.ErrNotExist) {
		return RunEntry{}, false, nil
	}
	if err != nil {
		return RunEntry{}, false, err
	}
	var last RunEntry
	found := false
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		var e RunEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		last, found = e, true
	}
	return last, found, sc.Err()
}

// ParseLegacy reads the positional settings line:
//
//	lat,lng,method,fajr_volume,azaan_volume[,fajr_audio,azaan_audio[,mawaqit_file]]
//
// Empty fields are "not set". Volumes are clamped; a non-numeric volume is a
// ConfigError.
func ParseLegacy(b []byte) (config.Record, error) {
	line, _, _ := strings.Cut(string(b), "\n")
	parts := strings.Split(strings.TrimSpace(line), ",")
	for len(parts) < 8 {
		parts = append(parts, "")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	rec := config.Record{Version: 1}
	var err error
	if rec.Lat, err = legacyFloat("lat", parts[0]); err != nil {
		return config.Record{}, err
	}
	if rec.Lng, err = legacyFloat("lng", parts[1]); err != nil {
		return config.Record{}, err
	}
	if parts[2] != "" {
		rec.Method = config.Ptr(parts[2])
	}

	fajr := config.PrayerRecord{}
	other := config.PrayerRecord{}
	if parts[3] != "" {
		v, err := config.ParseVolume("fajr_volume", parts[3])
		if err != nil {
			return config.Record{}, err
		}
		fajr.Volume = &v
	}
	if parts[4] != "" {
		v, err := config.ParseVolume("azaan_volume", parts[4])
		if err != nil {
			return config.Record{}, err
		}
		other.Volume = &v
	}
	if parts[5] != "" {
		fajr.Audio = config.Ptr(parts[5])
	}
	if parts[6] != "" {
		other.Audio = config.Ptr(parts[6])
	}
	if parts[7] != "" {
		rec.MawaqitFile = config.Ptr(parts[7])
	}

	if fajr != (config.PrayerRecord{}) {
		rec.SetPrayer("fajr", fajr)
	}
	if other != (config.PrayerRecord{}) {
		for _, n := range []string{"dhuhr", "asr", "maghrib", "isha"} {
			rec.SetPrayer(n, other)
		}
	}
	return rec, nil
}

func legacyFloat(field, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, config.Errorf(field, "invalid number %q in legacy settings", s)
	}
	return &v, nil
}
