package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"adhanclock/internal/app"
	"adhanclock/internal/config"
	"adhanclock/internal/prayer"
	logx "adhanclock/pkg/logx"
)

func newRunApp(ctx *cli.Context) (*app.App, error) {
	flags, err := flagsRecord(ctx)
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		ConfigPath: ctx.String("config"),
		Root:       ctx.String("root"),
		Flags:      flags,
		DryRun:     ctx.Bool("dry-run"),
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func update(ctx *cli.Context) error {
	a, err := newRunApp(ctx)
	if err != nil {
		return fail(ctx, err)
	}
	defer a.Close()

	c, cancel := signalContext()
	defer cancel()

	rep, err := a.Update(c)
	if err != nil {
		return fail(ctx, err)
	}
	printReport(ctx.App.Writer, rep)
	return nil
}

func watch(ctx *cli.Context) error {
	if ctx.String("config") == "" {
		return fail(ctx, config.Errorf("config", "watch requires --config"))
	}
	a, err := newRunApp(ctx)
	if err != nil {
		return fail(ctx, err)
	}
	defer a.Close()

	c, cancel := signalContext()
	defer cancel()

	log := a.Logger()
	return a.Watch(c, func(rep app.Report, err error) {
		if err != nil {
			log.Error("update failed", logx.Err(err))
			return
		}
		printReport(ctx.App.Writer, rep)
	})
}

// fail maps run errors to exit status 1; configuration problems also print usage.
func fail(ctx *cli.Context, err error) error {
	if config.IsConfigError(err) {
		fmt.Fprintln(ctx.App.ErrWriter, "adhanclock:", err)
		_ = cli.ShowSubcommandHelp(ctx)
		return cli.NewExitError("", 1)
	}
	return cli.NewExitError("adhanclock: "+err.Error(), 1)
}

func printReport(w io.Writer, rep app.Report) {
	if w == nil {
		w = os.Stdout
	}
	for _, n := range prayer.Order {
		state := ""
		if p, ok := rep.Settings.Prayers[n]; ok && !p.Enabled {
			state = " (disabled)"
		}
		fmt.Fprintf(w, "%-8s %s%s\n", n, rep.Times[n], state)
	}
	if !rep.DryRun {
		fmt.Fprintf(w, "installed %d jobs (replaced %d)\n", len(rep.Result.Jobs), rep.Result.Removed)
		return
	}
	fmt.Fprintln(w, "dry run; crontab not modified:")
	for _, j := range rep.Result.Jobs {
		fmt.Fprintln(w, j.Line())
	}
}
