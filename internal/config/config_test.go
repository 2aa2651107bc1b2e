package config

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "general": {
    "mode": "calculated",
    "location": {"lat": 21.4, "lng": 39.8},
    "method": "Makkah",
    "default_volume": 70,
    "update_time": "02:45"
  },
  "prayers": {
    "fajr": {"enabled": true, "audio": "fajr.mp3", "volume": 40},
    "Isha": {"enabled": false}
  }
}`

func TestManagerParseJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/adhan/config.json", []byte(sampleJSON), 0o644))

	m := NewManager(fs, "/etc/adhan/config.json")
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Same(t, cfg, m.Get())

	assert.Equal(t, "Makkah", cfg.General.Method)
	require.NotNil(t, cfg.General.Location)
	assert.InDelta(t, 21.4, *cfg.General.Location.Lat, 1e-9)
	assert.Equal(t, 40, *cfg.Prayers["fajr"].Volume)
}

func TestManagerParseYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	yml := "general:\n  mawaqit_file: mawaqit.json\nprayers:\n  asr:\n    volume: 55\n"
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(yml), 0o644))

	cfg, err := NewManager(fs, "/c.yaml").Parse()
	require.NoError(t, err)
	assert.Equal(t, "mawaqit.json", cfg.General.MawaqitFile)
	assert.Equal(t, 55, *cfg.Prayers["asr"].Volume)
}

func TestManagerRejectsUnknownAndTrailing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/unknown.json", []byte(`{"general":{"nope":1}}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/trailing.json", []byte(`{} {}`), 0o644))

	for _, p := range []string{"/unknown.json", "/trailing.json", "/missing.json"} {
		_, err := NewManager(fs, p).Parse()
		require.Error(t, err, p)
		assert.True(t, IsConfigError(err), p)
	}
}

func TestConfigRecord(t *testing.T) {
	cfg, err := Decode("c.json", []byte(sampleJSON))
	require.NoError(t, err)

	r := cfg.Record()
	assert.Equal(t, RecordVersion, r.Version)
	assert.Equal(t, "calculated", *r.Mode)
	assert.Equal(t, 70, *r.DefaultVolume)
	assert.Nil(t, r.MawaqitFile)
	assert.False(t, *r.Prayers["isha"].Enabled, "prayer keys are normalized to lower case")
	assert.Equal(t, "fajr.mp3", *r.Prayers["fajr"].Audio)
}

func TestRecordMergePrecedence(t *testing.T) {
	base := Record{
		Method:        Ptr("MWL"),
		Lat:           Ptr(1.0),
		DefaultVolume: Ptr(100),
		Prayers:       map[string]PrayerRecord{"fajr": {Volume: Ptr(30), Audio: Ptr("a.mp3")}},
	}
	over := Record{
		Method:  Ptr("ISNA"),
		Prayers: map[string]PrayerRecord{"fajr": {Volume: Ptr(60)}, "asr": {Enabled: Ptr(false)}},
	}

	got := base.Merge(over)
	assert.Equal(t, "ISNA", *got.Method)
	assert.Equal(t, 1.0, *got.Lat)
	assert.Equal(t, 100, *got.DefaultVolume)
	assert.Equal(t, 60, *got.Prayers["fajr"].Volume)
	assert.Equal(t, "a.mp3", *got.Prayers["fajr"].Audio)
	assert.False(t, *got.Prayers["asr"].Enabled)

	// merge must not alias the inputs
	*got.Method = "changed"
	assert.Equal(t, "ISNA", *over.Method)
	assert.Equal(t, 30, *base.Prayers["fajr"].Volume)
}

func TestClampPercent(t *testing.T) {
	for _, v := range []int{-50, -1, 0, 1, 50, 99, 100, 101, 1000} {
		c := ClampPercent(v)
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 100)
		assert.Equal(t, c, ClampPercent(c), "idempotent")
	}
}

func TestParseVolume(t *testing.T) {
	v, err := ParseVolume("fajr.volume", " 150 ")
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	_, err = ParseVolume("fajr.volume", "loud")
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "fajr.volume", ce.Field)
}

func TestParseTime(t *testing.T) {
	h, m, err := ParseTime("update_time", "03:15")
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 15}, [2]int{h, m})

	for _, raw := range []string{"24:00", "10:61", "x:10"} {
		_, _, err := ParseTime("update_time", raw)
		assert.True(t, IsConfigError(err), raw)
	}
}

func TestSummarizeChange(t *testing.T) {
	oldCfg, err := Decode("c.json", []byte(sampleJSON))
	require.NoError(t, err)
	newCfg, err := Decode("c.json", []byte(sampleJSON))
	require.NoError(t, err)

	changed, _ := SummarizeChange(oldCfg, newCfg)
	assert.Empty(t, changed)

	newCfg.General.UpdateTime = "04:00"
	newCfg.Prayers["asr"] = PrayerConfig{Volume: Ptr(10)}
	changed, fields := SummarizeChange(oldCfg, newCfg)
	assert.Equal(t, []string{"general", "prayers"}, changed)
	assert.NotEmpty(t, fields)
}
