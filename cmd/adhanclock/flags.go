package main

import (
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"adhanclock/internal/config"
)

func configFlag() cli.Flag {
	return cli.StringFlag{Name: "config, c", Usage: "path to a JSON or YAML config file"}
}

func rootFlag() cli.Flag {
	return cli.StringFlag{Name: "root", Usage: "install directory holding playAzaan.sh and the audio files (default: the executable's directory)"}
}

func cronUserFlag() cli.Flag {
	return cli.StringFlag{Name: "cron-user", Usage: "install into this user's crontab (default: the current user)"}
}

func updateFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		rootFlag(),
		cli.StringFlag{Name: "mode", Usage: "calculated or mawaqit (default: mawaqit when a schedule file is set)"},
		cli.StringFlag{Name: "lat", Usage: "latitude of the location, for example 30.345621"},
		cli.StringFlag{Name: "lng", Usage: "longitude of the location, for example 60.512126"},
		cli.StringFlag{Name: "method", Usage: "calculation method: MWL, ISNA, Egypt, Makkah, Karachi, Tehran or Jafari"},
		cli.StringFlag{Name: "fajr-azaan-volume", Usage: "volume for the fajr adhan as a percent (0-100, default 100)"},
		cli.StringFlag{Name: "azaan-volume", Usage: "volume for the other prayers as a percent (0-100, default 100)"},
		cli.StringFlag{Name: "fajr-audio", Usage: "MP3 file name or path for fajr (default Adhan-fajr.mp3)"},
		cli.StringFlag{Name: "azaan-audio", Usage: "MP3 file name or path for the other prayers (default Adhan-Madinah.mp3)"},
		cli.StringFlag{Name: "mawaqit-file", Usage: "mawaqit schedule JSON; selects mawaqit mode"},
		cli.StringFlag{Name: "update-time", Usage: "HH:MM of the daily refresh (default 03:15)"},
		cli.StringFlag{Name: "log-file", Usage: "log file for the jobs (default <root>/adhan.log)"},
		cronUserFlag(),
		cli.BoolFlag{Name: "dry-run, n", Usage: "print the jobs instead of installing them"},
	}
}

var otherPrayers = []string{"dhuhr", "asr", "maghrib", "isha"}

// flagsRecord converts the command-line flags into the highest settings layer.
func flagsRecord(ctx *cli.Context) (config.Record, error) {
	rec := config.Record{Version: config.RecordVersion}
	str := func(name string) *string {
		if !ctx.IsSet(name) {
			return nil
		}
		v := strings.TrimSpace(ctx.String(name))
		if v == "" {
			return nil
		}
		return &v
	}
	num := func(name string) (*float64, error) {
		s := str(name)
		if s == nil {
			return nil, nil
		}
		v, err := strconv.ParseFloat(*s, 64)
		if err != nil {
			return nil, config.Errorf(name, "invalid number %q", *s)
		}
		return &v, nil
	}
	vol := func(name string) (*int, error) {
		s := str(name)
		if s == nil {
			return nil, nil
		}
		v, err := config.ParseVolume(name, *s)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	var err error
	if rec.Lat, err = num("lat"); err != nil {
		return config.Record{}, err
	}
	if rec.Lng, err = num("lng"); err != nil {
		return config.Record{}, err
	}
	rec.Mode = str("mode")
	rec.Method = str("method")
	rec.MawaqitFile = str("mawaqit-file")
	rec.UpdateTime = str("update-time")
	rec.LogFile = str("log-file")
	rec.CronUser = str("cron-user")

	fajr := config.PrayerRecord{Audio: str("fajr-audio")}
	if fajr.Volume, err = vol("fajr-azaan-volume"); err != nil {
		return config.Record{}, err
	}
	other := config.PrayerRecord{Audio: str("azaan-audio")}
	if other.Volume, err = vol("azaan-volume"); err != nil {
		return config.Record{}, err
	}
	if fajr != (config.PrayerRecord{}) {
		rec.SetPrayer("fajr", fajr)
	}
	if other != (config.PrayerRecord{}) {
		for _, n := range otherPrayers {
			rec.SetPrayer(n, other)
		}
	}
	return rec, nil
}
