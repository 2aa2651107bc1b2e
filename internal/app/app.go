// Package app wires one adhanclock run: config, settings store, resolver,
// time source and crontab installer.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"adhanclock/internal/config"
	"adhanclock/internal/crontab"
	"adhanclock/internal/prayer"
	"adhanclock/internal/resolver"
	"adhanclock/internal/schedule"
	"adhanclock/internal/storage"
	logx "adhanclock/pkg/logx"
)

type Options struct {
	// ConfigPath is optional; without it only flags and the persisted
	// record are used.
	ConfigPath string
	// Root overrides general.root and the executable's directory.
	Root string
	// Flags is the command-line settings layer.
	Flags config.Record
	// DryRun computes and prints the jobs without touching the crontab or
	// the persisted record.
	DryRun bool
	// Exe is what the refresh job runs; empty means os.Executable().
	Exe string

	Fs     afero.Fs
	Runner crontab.Runner
	Now    func() time.Time
	// Log replaces the config-driven logging service when set.
	Log logx.Logger
}

type App struct {
	opts Options
	fs   afero.Fs
	cfgm *config.Manager

	logs *logx.Service
	base logx.Logger
	log  logx.Logger
}

// Report is the outcome of one update run.
type Report struct {
	Settings resolver.Settings
	Times    prayer.Times
	Result   schedule.Result
	DryRun   bool
}

// New loads the config file (when given) and sets up logging from it.
func New(opts Options) (*App, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &App{opts: opts, fs: fs}

	var cfg *config.Config
	if p := strings.TrimSpace(opts.ConfigPath); p != "" {
		a.cfgm = config.NewManager(fs, p)
		c, err := a.cfgm.Load()
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if opts.Log.IsZero() {
		a.logs, a.base = logx.New(mapLogConfig(cfg))
	} else {
		a.base = opts.Log
	}
	a.log = a.base.Component("app")
	if a.cfgm != nil {
		a.cfgm.SetLogger(a.base.Component("config"))
	}
	return a, nil
}

func (a *App) Logger() logx.Logger { return a.log }

// Close releases the logging sinks.
func (a *App) Close() error {
	if a.logs != nil {
		return a.logs.Close()
	}
	return nil
}

func (a *App) config() *config.Config {
	if a.cfgm == nil {
		return &config.Config{}
	}
	if c := a.cfgm.Get(); c != nil {
		return c
	}
	return &config.Config{}
}

// root picks the install directory: flag, then general.root (relative to
// the config file), then the directory of the executable.
func (a *App) root(cfg *config.Config) string {
	if r := strings.TrimSpace(a.opts.Root); r != "" {
		return r
	}
	if r := strings.TrimSpace(cfg.General.Root); r != "" {
		if !filepath.IsAbs(r) && a.cfgm != nil {
			r = filepath.Join(filepath.Dir(a.cfgm.Path()), r)
		}
		return r
	}
	if exe, err := a.exe(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}

func (a *App) exe() (string, error) {
	if e := strings.TrimSpace(a.opts.Exe); e != "" {
		return e, nil
	}
	return os.Executable()
}

func (a *App) openStore(cfg *config.Config, root string) (storage.Store, error) {
	sc, err := mapStorageConfig(cfg, root, a.fs)
	if err != nil {
		return nil, err
	}
	return storage.Open(sc, a.base)
}

// Update performs one full run. Any failure before installation leaves the
// crontab untouched.
func (a *App) Update(ctx context.Context) (Report, error) {
	start := time.Now()
	now := a.opts.Now()
	cfg := a.config()
	root := a.root(cfg)

	st, err := a.openStore(cfg, root)
	if err != nil {
		return Report{}, err
	}
	defer st.Close()

	rep, err := a.update(ctx, st, cfg, root, now)

	entry := storage.RunEntry{
		At:      now,
		Mode:    string(rep.Settings.Mode),
		Jobs:    len(rep.Result.Jobs),
		Removed: rep.Result.Removed,
		DryRun:  a.opts.DryRun,
		TookMS:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if aerr := st.AppendRun(ctx, entry); aerr != nil && !errors.Is(aerr, storage.ErrDisabled) {
		a.log.Warn("run log append failed", logx.Err(aerr))
	}
	return rep, err
}

func (a *App) update(ctx context.Context, st storage.Store, cfg *config.Config, root string, now time.Time) (Report, error) {
	rep := Report{DryRun: a.opts.DryRun}

	persisted, found, err := st.LoadSettings(ctx)
	if err != nil {
		return rep, err
	}
	if found {
		a.log.Debug("persisted settings loaded", logx.Int("version", persisted.Version))
	}

	s, merged, err := resolver.Resolve(resolver.Layers{
		Persisted: persisted,
		File:      cfg.Record(),
		Flags:     a.opts.Flags,
	}, resolver.Options{Root: root, Fs: a.fs, Log: a.base})
	if err != nil {
		return rep, err
	}
	rep.Settings = s

	if !a.opts.DryRun {
		if err := st.SaveSettings(ctx, merged); err != nil && !errors.Is(err, storage.ErrDisabled) {
			return rep, err
		}
	}

	times, err := s.Source(a.fs).Today(now)
	if err != nil {
		return rep, err
	}
	rep.Times = times

	var store crontab.Store
	if a.opts.DryRun {
		store = crontab.NewMemory()
	} else {
		cs, err := crontab.Load(ctx, a.opts.Runner, s.CronUser, a.base.Component("crontab"))
		if err != nil {
			return rep, err
		}
		store = cs
	}

	exe, err := a.exe()
	if err != nil {
		return rep, err
	}
	in := schedule.Installer{Exe: exe, ConfigPath: a.absConfigPath(), Root: a.rootFlag(), Log: a.base}
	res, err := in.Install(ctx, s, times, store)
	if err != nil {
		return rep, err
	}
	rep.Result = res

	fields := []logx.Field{logx.String("mode", string(s.Mode)), logx.Bool("dry_run", a.opts.DryRun)}
	for _, n := range prayer.Order {
		fields = append(fields, logx.String(string(n), times[n]))
	}
	a.log.Info("update finished", fields...)
	return rep, nil
}

// rootFlag is the --root value the refresh job must carry. A root from the
// config file is reproduced by --config, and the executable's directory by
// the executable itself.
func (a *App) rootFlag() string {
	r := strings.TrimSpace(a.opts.Root)
	if r == "" {
		return ""
	}
	if abs, err := filepath.Abs(r); err == nil {
		return abs
	}
	return r
}

func (a *App) absConfigPath() string {
	if a.cfgm == nil {
		return ""
	}
	p := a.cfgm.Path()
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
