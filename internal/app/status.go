package app

import (
	"context"
	"time"

	"adhanclock/internal/crontab"
	"adhanclock/internal/resolver"
	"adhanclock/internal/schedule"
	"adhanclock/internal/storage"
)

type JobStatus struct {
	Job  crontab.Job
	Next time.Time
}

// Status is the installed schedule as the crontab currently holds it.
type Status struct {
	CronUser string
	Jobs     []JobStatus

	LastRun    storage.RunEntry
	HasLastRun bool
}

// Status reads the crontab and the run log without changing either.
func (a *App) Status(ctx context.Context) (Status, error) {
	cfg := a.config()
	root := a.root(cfg)
	st, err := a.openStore(cfg, root)
	if err != nil {
		return Status{}, err
	}
	defer st.Close()

	persisted, _, err := st.LoadSettings(ctx)
	if err != nil {
		return Status{}, err
	}
	merged := resolver.Layers{Persisted: persisted, File: cfg.Record(), Flags: a.opts.Flags}.Merged()
	user := ""
	if merged.CronUser != nil {
		user = *merged.CronUser
	}

	ct, err := crontab.Load(ctx, a.opts.Runner, user, a.base.Component("crontab"))
	if err != nil {
		return Status{}, err
	}
	now := a.opts.Now()
	out := Status{CronUser: user}
	for _, j := range ct.List(schedule.Tag) {
		js := JobStatus{Job: j}
		if next, err := crontab.Next(j, now); err == nil {
			js.Next = next
		}
		out.Jobs = append(out.Jobs, js)
	}

	out.LastRun, out.HasLastRun, err = st.LastRun(ctx)
	if err != nil {
		return Status{}, err
	}
	return out, nil
}
