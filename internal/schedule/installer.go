// Package schedule turns resolved settings and today's prayer times into the
// tagged crontab jobs of this tool.
package schedule

import (
	"context"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"adhanclock/internal/crontab"
	"adhanclock/internal/prayer"
	"adhanclock/internal/resolver"
	logx "adhanclock/pkg/logx"
)

// Tag marks every crontab line owned by this tool.
const Tag = "rpiAdhanClockJob"

const (
	SubTagUpdate    = "update"
	SubTagClearLogs = "clear-logs"
)

// Installer replaces the tool's jobs in a store.
type Installer struct {
	// Exe is the command the refresh job re-invokes.
	Exe string
	// ConfigPath is passed to the refresh job as --config when set.
	ConfigPath string
	// Root is passed to the refresh job as --root when set.
	Root string

	Log logx.Logger
}

// Result describes one install.
type Result struct {
	Removed int
	Jobs    []crontab.Job
}

// Install removes every job tagged Tag and adds today's prayer jobs, the daily
// refresh job and the monthly log truncation job, then persists the store.
// Nothing in the store changes when the jobs cannot be built.
func (in Installer) Install(ctx context.Context, s resolver.Settings, times prayer.Times, store crontab.Store) (Result, error) {
	log := in.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.Component("installer")

	jobs, err := in.Jobs(s, times)
	if err != nil {
		return Result{}, err
	}

	removed := store.RemoveByTag(Tag)
	for _, j := range jobs {
		if err := store.Add(j); err != nil {
			return Result{}, fmt.Errorf("add %s job: %w", j.SubTag, err)
		}
	}
	if err := store.Persist(ctx); err != nil {
		return Result{}, err
	}

	log.Info("schedule installed",
		logx.Int("removed", removed),
		logx.Int("installed", len(jobs)),
		logx.String("mode", string(s.Mode)),
	)
	return Result{Removed: removed, Jobs: jobs}, nil
}

// Jobs builds and validates the full job set without touching any store.
func (in Installer) Jobs(s resolver.Settings, times prayer.Times) ([]crontab.Job, error) {
	if err := times.Validate(); err != nil {
		return nil, fmt.Errorf("prayer times: %w", err)
	}
	logFile := shellescape.Quote(s.LogFile)

	jobs := make([]crontab.Job, 0, len(prayer.Order)+2)
	for _, n := range prayer.Order {
		p, ok := s.Prayers[n]
		if !ok || !p.Enabled {
			continue
		}
		h, m, _ := prayer.ParseClock(times[n])
		cmd := strings.Join([]string{
			shellescape.Quote(s.PlayScript),
			shellescape.Quote(p.Audio),
			shellescape.Quote(fmt.Sprint(p.Volume)),
		}, " ") + " >> " + logFile + " 2>&1"
		jobs = append(jobs, crontab.Daily(h, m, cmd, Tag, string(n)))
	}

	jobs = append(jobs,
		crontab.Daily(s.UpdateHour, s.UpdateMinute, in.refreshCommand()+" >> "+logFile+" 2>&1", Tag, SubTagUpdate),
		crontab.Job{Minute: "0", Hour: "0", Day: "1", Command: "truncate -s 0 " + logFile + " 2>&1", Tag: Tag, SubTag: SubTagClearLogs},
	)

	for _, j := range jobs {
		if err := crontab.Validate(j.Spec()); err != nil {
			return nil, fmt.Errorf("%s job: %w", j.SubTag, err)
		}
	}
	return jobs, nil
}

func (in Installer) refreshCommand() string {
	exe := strings.TrimSpace(in.Exe)
	if exe == "" {
		exe = "adhanclock"
	}
	parts := []string{shellescape.Quote(exe), "update"}
	if p := strings.TrimSpace(in.ConfigPath); p != "" {
		parts = append(parts, "--config", shellescape.Quote(p))
	}
	if r := strings.TrimSpace(in.Root); r != "" {
		parts = append(parts, "--root", shellescape.Quote(r))
	}
	return strings.Join(parts, " ")
}
