package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adhanclock/internal/crontab"
	"adhanclock/internal/prayer"
	"adhanclock/internal/resolver"
	logx "adhanclock/pkg/logx"
)

func settings() resolver.Settings {
	ps := map[prayer.Name]resolver.PrayerSettings{}
	for _, n := range prayer.Order {
		ps[n] = resolver.PrayerSettings{Enabled: true, Audio: "/opt/adhan/Adhan-Madinah.mp3", Volume: 100}
	}
	ps[prayer.Fajr] = resolver.PrayerSettings{Enabled: true, Audio: "/opt/adhan/Adhan-fajr.mp3", Volume: 80}
	return resolver.Settings{
		Mode:         resolver.ModeCalculated,
		Prayers:      ps,
		UpdateHour:   3,
		UpdateMinute: 15,
		Root:         "/opt/adhan",
		PlayScript:   "/opt/adhan/playAzaan.sh",
		LogFile:      "/opt/adhan/adhan.log",
	}
}

var today = prayer.Times{
	prayer.Fajr: "05:04", prayer.Dhuhr: "12:21", prayer.Asr: "15:45",
	prayer.Maghrib: "18:20", prayer.Isha: "19:50",
}

func installer() Installer {
	return Installer{Exe: "/usr/local/bin/adhanclock", ConfigPath: "/etc/adhan clock.json", Log: logx.Nop()}
}

func TestInstallBuildsSevenJobs(t *testing.T) {
	store := crontab.NewMemory(crontab.Job{Minute: "0", Hour: "1", Command: "backup", Tag: "other"})
	res, err := installer().Install(context.Background(), settings(), today, store)
	require.NoError(t, err)

	lines := make([]string, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		lines = append(lines, j.Line())
	}
	assert.Equal(t, []string{
		"4 5 * * * /opt/adhan/playAzaan.sh /opt/adhan/Adhan-fajr.mp3 80 >> /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:fajr",
		"21 12 * * * /opt/adhan/playAzaan.sh /opt/adhan/Adhan-Madinah.mp3 100 >> /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:dhuhr",
		"45 15 * * * /opt/adhan/playAzaan.sh /opt/adhan/Adhan-Madinah.mp3 100 >> /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:asr",
		"20 18 * * * /opt/adhan/playAzaan.sh /opt/adhan/Adhan-Madinah.mp3 100 >> /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:maghrib",
		"50 19 * * * /opt/adhan/playAzaan.sh /opt/adhan/Adhan-Madinah.mp3 100 >> /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:isha",
		"15 3 * * * /usr/local/bin/adhanclock update --config '/etc/adhan clock.json' >> /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:update",
		"0 0 1 * * truncate -s 0 /opt/adhan/adhan.log 2>&1 # rpiAdhanClockJob:clear-logs",
	}, lines)

	assert.Len(t, store.List(Tag), 7)
	assert.Len(t, store.List("other"), 1)
	assert.Equal(t, 1, store.Persists())
}

func TestInstallSkipsDisabledPrayer(t *testing.T) {
	s := settings()
	p := s.Prayers[prayer.Asr]
	p.Enabled = false
	s.Prayers[prayer.Asr] = p

	store := crontab.NewMemory()
	res, err := installer().Install(context.Background(), s, today, store)
	require.NoError(t, err)
	require.Len(t, res.Jobs, 6)
	for _, j := range store.List(Tag) {
		assert.NotEqual(t, "asr", j.SubTag)
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	store := crontab.NewMemory()
	ctx := context.Background()

	first, err := installer().Install(ctx, settings(), today, store)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Removed)
	snapshot := store.Jobs()

	second, err := installer().Install(ctx, settings(), today, store)
	require.NoError(t, err)
	assert.Equal(t, 7, second.Removed)
	assert.Equal(t, snapshot, store.Jobs())
}

func TestInstallQuotesArguments(t *testing.T) {
	s := settings()
	s.LogFile = "/var/log/adhan's.log"
	p := s.Prayers[prayer.Isha]
	p.Audio = "/opt/adhan/my adhan.mp3"
	s.Prayers[prayer.Isha] = p

	jobs, err := Installer{}.Jobs(s, today)
	require.NoError(t, err)
	assert.Equal(t, `/opt/adhan/playAzaan.sh '/opt/adhan/my adhan.mp3' 100 >> '/var/log/adhan'"'"'s.log' 2>&1`, jobs[4].Command)
	assert.Equal(t, `adhanclock update >> '/var/log/adhan'"'"'s.log' 2>&1`, jobs[5].Command)
}

func TestRefreshJobCarriesRoot(t *testing.T) {
	in := installer()
	in.Root = "/srv/adhan clock"
	jobs, err := in.Jobs(settings(), today)
	require.NoError(t, err)
	assert.Equal(t, `/usr/local/bin/adhanclock update --config '/etc/adhan clock.json' --root '/srv/adhan clock' >> /opt/adhan/adhan.log 2>&1`, jobs[5].Command)
}

func TestInstallLeavesStoreOnBadTimes(t *testing.T) {
	existing := []crontab.Job{crontab.Daily(5, 0, "old", Tag, "fajr")}
	for name, times := range map[string]prayer.Times{
		"malformed": {prayer.Fajr: "5:4", prayer.Dhuhr: "12:21", prayer.Asr: "15:45", prayer.Maghrib: "18:20", prayer.Isha: "19:50"},
		"out of range": {prayer.Fajr: "05:04", prayer.Dhuhr: "12:21", prayer.Asr: "15:45", prayer.Maghrib: "18:20", prayer.Isha: "24:10"},
		"missing": {prayer.Fajr: "05:04"},
	} {
		t.Run(name, func(t *testing.T) {
			store := crontab.NewMemory(existing...)
			_, err := installer().Install(context.Background(), settings(), times, store)
			require.Error(t, err)
			assert.Equal(t, existing, store.Jobs())
			assert.Equal(t, 0, store.Persists())
		})
	}
}

func TestInstallBadUpdateTime(t *testing.T) {
	s := settings()
	s.UpdateHour = 25
	store := crontab.NewMemory()
	_, err := installer().Install(context.Background(), s, today, store)
	require.Error(t, err)
	assert.Empty(t, store.Jobs())
}

type failingStore struct{ *crontab.Memory }

func (failingStore) Persist(context.Context) error { return errors.New("crontab: permission denied") }

func TestInstallPersistFailure(t *testing.T) {
	_, err := installer().Install(context.Background(), settings(), today, failingStore{crontab.NewMemory()})
	assert.ErrorContains(t, err, "permission denied")
}
