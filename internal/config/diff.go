package config

import (
	"reflect"
	"sort"
	"strings"

	logx "adhanclock/pkg/logx"
)

// SummarizeChange returns (1) a compact list of changed sections and
// (2) structured fields describing the new values, for the watch log line.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	fields := make([]logx.Field, 0, 12)

	og, ng := oldCfg.General, newCfg.General
	if !reflect.DeepEqual(og, ng) {
		changed = append(changed, "general")
		fields = append(fields,
			logx.String("general.mode", ng.Mode),
			logx.String("general.method", ng.Method),
			logx.String("general.update_time", ng.UpdateTime),
			logx.Bool("general.mawaqit_file_set", strings.TrimSpace(ng.MawaqitFile) != ""),
			logx.Bool("general.location_changed", !reflect.DeepEqual(og.Location, ng.Location)),
		)
	}

	if prayers := diffPrayers(oldCfg.Prayers, newCfg.Prayers); len(prayers) > 0 {
		changed = append(changed, "prayers")
		fields = append(fields, logx.Strings("prayers.changed", prayers))
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logging.journal", newCfg.Logging.Journal),
		)
	}

	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		driver := ""
		if newCfg.Storage != nil {
			driver = newCfg.Storage.Driver
		}
		fields = append(fields, logx.String("storage.driver", driver))
	}

	sort.Strings(changed)
	return changed, fields
}

func diffPrayers(oldM, newM map[string]PrayerConfig) []string {
	set := map[string]struct{}{}
	for k := range oldM {
		set[k] = struct{}{}
	}
	for k := range newM {
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		o, ok1 := oldM[name]
		n, ok2 := newM[name]
		if ok1 != ok2 || !reflect.DeepEqual(o, n) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
