package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "adhanclock:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "adhanclock"
	app.HelpName = "adhanclock"
	app.Usage = "install crontab jobs that play the adhan at each prayer time"
	app.UsageText = "adhanclock [command] [options]"
	app.Version = version
	app.ErrWriter = os.Stderr
	app.Commands = []cli.Command{
		{
			Name:         "update",
			Aliases:      []string{"u"},
			Usage:        "compute today's prayer times and reinstall the crontab jobs",
			Action:       update,
			Flags:        updateFlags(),
			OnUsageError: usageError,
		},
		{
			Name:   "status",
			Usage:  "show the installed jobs and their next firing time",
			Action: status,
			Flags:  []cli.Flag{configFlag(), rootFlag(), cronUserFlag()},
		},
		{
			Name:         "watch",
			Usage:        "run update now and again whenever the config file changes",
			Action:       watch,
			Flags:        updateFlags(),
			OnUsageError: usageError,
		},
		{
			Name:   "setup",
			Usage:  "write a config file interactively",
			Action: setup,
			Flags:  []cli.Flag{configFlag()},
		},
	}
	// Without a command, behave like a plain update so the refresh job and
	// manual runs share one entry point.
	app.Action = update
	app.Flags = updateFlags()
	app.OnUsageError = usageError
	return app
}

func usageError(ctx *cli.Context, err error, _ bool) error {
	fmt.Fprintln(ctx.App.Writer, "Incorrect usage:", err)
	_ = cli.ShowSubcommandHelp(ctx)
	return cli.NewExitError("", 1)
}
