package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adhanclock/internal/config"
	logx "adhanclock/pkg/logx"
)

func sample() config.Record {
	r := config.Record{
		Lat:        config.Ptr(51.5),
		Lng:        config.Ptr(-0.12),
		Method:     config.Ptr("MWL"),
		UpdateTime: config.Ptr("02:45"),
	}
	r.SetPrayer("fajr", config.PrayerRecord{Volume: config.Ptr(40), Enabled: config.Ptr(true)})
	r.SetPrayer("isha", config.PrayerRecord{Enabled: config.Ptr(false)})
	return r
}

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := st.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = st.LastRun(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SaveSettings(ctx, sample()))
	got, ok, err := st.LoadSettings(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	want := sample()
	want.Version = config.RecordVersion
	assert.Equal(t, want, got)

	// saving again replaces the record
	next := sample()
	next.Method = config.Ptr("ISNA")
	require.NoError(t, st.SaveSettings(ctx, next))
	got, _, err = st.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ISNA", *got.Method)

	at := time.Date(2025, 5, 1, 3, 15, 0, 0, time.UTC)
	require.NoError(t, st.AppendRun(ctx, RunEntry{At: at, Mode: "calculated", Jobs: 7}))
	require.NoError(t, st.AppendRun(ctx, RunEntry{At: at.Add(time.Hour), Mode: "mawaqit", Error: "schedule lookup 05-01: no entry for day 1", TookMS: 3}))

	last, ok, err := st.LastRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mawaqit", last.Mode)
	assert.Equal(t, "schedule lookup 05-01: no entry for day 1", last.Error)
	assert.True(t, last.At.Equal(at.Add(time.Hour)))
	assert.Equal(t, int64(3), last.TookMS)

	require.NoError(t, st.Close())
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	st, err := Open(Config{Driver: "file", Path: "/opt/adhan/.settings", Fs: fs}, logx.Nop())
	require.NoError(t, err)
	exerciseStore(t, st)

	ok, err := afero.Exists(fs, "/opt/adhan/.settings.json")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = afero.Exists(fs, "/opt/adhan/.settings.json.tmp")
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "adhan.db")}, logx.Nop())
	require.NoError(t, err)
	exerciseStore(t, st)
}

func TestNoneStore(t *testing.T) {
	st, err := Open(Config{Driver: "none"}, logx.Nop())
	require.NoError(t, err)
	_, ok, err := st.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, st.SaveSettings(context.Background(), sample()), ErrDisabled)

	_, err = Open(Config{Driver: "redis"}, logx.Nop())
	assert.Error(t, err)
	_, err = Open(Config{Driver: "file"}, logx.Nop())
	assert.Error(t, err)
}

func TestLegacyMigration(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/adhan/.settings", []byte("30.345621,60.512126,Karachi,150,80,fajr.mp3,,mawaqit.json\n"), 0o644))

	st, err := Open(Config{Driver: "file", Path: "/opt/adhan/.settings", Fs: fs}, logx.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	rec, ok, err := st.LoadSettings(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Version)
	assert.Equal(t, 30.345621, *rec.Lat)
	assert.Equal(t, "Karachi", *rec.Method)
	assert.Equal(t, "mawaqit.json", *rec.MawaqitFile)
	assert.Equal(t, 100, *rec.Prayers["fajr"].Volume)
	assert.Equal(t, "fajr.mp3", *rec.Prayers["fajr"].Audio)
	assert.Equal(t, 80, *rec.Prayers["maghrib"].Volume)
	assert.Nil(t, rec.Prayers["maghrib"].Audio)

	require.NoError(t, st.SaveSettings(ctx, rec))
	again, ok, err := st.LoadSettings(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, config.RecordVersion, again.Version)
	assert.Equal(t, *rec.Lat, *again.Lat)
}

func TestParseLegacy(t *testing.T) {
	rec, err := ParseLegacy([]byte("21.4,39.8,Makkah,100,100"))
	require.NoError(t, err)
	assert.Equal(t, "Makkah", *rec.Method)
	assert.Len(t, rec.Prayers, 5)
	assert.Nil(t, rec.MawaqitFile)

	rec, err = ParseLegacy([]byte(",,,,"))
	require.NoError(t, err)
	assert.Nil(t, rec.Lat)
	assert.Empty(t, rec.Prayers)

	_, err = ParseLegacy([]byte("21.4,39.8,Makkah,loud,100"))
	assert.True(t, config.IsConfigError(err))
	_, err = ParseLegacy([]byte("north,39.8,Makkah,100,100"))
	assert.True(t, config.IsConfigError(err))
}

func TestFileStoreRejectsNewerRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.json", []byte(`{"version": 9}`), 0o600))
	st, err := Open(Config{Driver: "file", Path: "/s", Fs: fs}, logx.Nop())
	require.NoError(t, err)
	_, _, err = st.LoadSettings(context.Background())
	assert.Error(t, err)
}
