package app

import (
	"context"
	"strings"

	"adhanclock/internal/config"
	logx "adhanclock/pkg/logx"
)

// Watch runs Update once, then again every time the config file changes,
// until ctx is done. Runs never overlap; onRun sees each outcome.
func (a *App) Watch(ctx context.Context, onRun func(Report, error)) error {
	if a.cfgm == nil {
		return config.Errorf("config", "watch requires a config file")
	}
	if onRun == nil {
		onRun = func(Report, error) {}
	}

	rep, err := a.Update(ctx)
	onRun(rep, err)

	a.log.Info("watching config", logx.String("path", a.cfgm.Path()))
	return a.cfgm.Watch(ctx, func(old, cur *config.Config) {
		sections, fields := config.SummarizeChange(old, cur)
		if len(sections) == 0 {
			a.log.Debug("config reload had no effective changes")
			return
		}
		a.log.Info("config changed", append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, fields...)...)
		if a.logs != nil {
			a.logs.Apply(mapLogConfig(cur))
		}
		rep, err := a.Update(ctx)
		onRun(rep, err)
	})
}
