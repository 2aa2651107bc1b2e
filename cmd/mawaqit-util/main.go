// Command mawaqit-util looks up mosques in the mawaqit directory and downloads
// their yearly schedule for adhanclock's mawaqit mode.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"adhanclock/internal/mawaqit"
	logx "adhanclock/pkg/logx"
)

func main() {
	// Credentials may live in a .env file next to the working directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "mawaqit-util: .env:", err)
	}
	if err := newApp(afero.NewOsFs()).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mawaqit-util:", err)
		os.Exit(1)
	}
}

func newApp(fs afero.Fs) *cli.App {
	app := cli.NewApp()
	app.Name = "mawaqit-util"
	app.HelpName = "mawaqit-util"
	app.Usage = "generate mawaqit prayer times JSON for adhanclock"
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "username, u", EnvVar: "MAWAQIT_USERNAME", Usage: "mawaqit username"},
		cli.StringFlag{Name: "password, p", EnvVar: "MAWAQIT_PASSWORD", Usage: "mawaqit password"},
		cli.StringFlag{Name: "base-url", Value: mawaqit.DefaultBaseURL, Usage: "API base URL", Hidden: true},
		cli.BoolFlag{Name: "verbose", Usage: "log requests"},
	}
	app.Commands = []cli.Command{
		{
			Name:      "nearby",
			Usage:     "list nearby mosques",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "lat", Usage: "latitude"},
				cli.StringFlag{Name: "lng", Usage: "longitude"},
			},
			Action: nearby,
		},
		{
			Name:      "search",
			Usage:     "search mosques by name",
			ArgsUsage: "<keyword>",
			Action:    search,
		},
		{
			Name:      "generate",
			Usage:     "generate the schedule JSON of a mosque",
			ArgsUsage: "<uuid> [-o file]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "output, o", Value: "mawaqit.json", Usage: "output file"},
			},
			Action: func(ctx *cli.Context) error { return generate(ctx, fs) },
		},
	}
	return app
}

func newClient(ctx *cli.Context) (*mawaqit.Client, error) {
	user := strings.TrimSpace(ctx.GlobalString("username"))
	pass := ctx.GlobalString("password")
	if user == "" || pass == "" {
		_ = cli.ShowAppHelp(ctx)
		return nil, cli.NewExitError("mawaqit-util: --username and --password (or MAWAQIT_USERNAME/MAWAQIT_PASSWORD) are required", 1)
	}
	level := "warn"
	if ctx.GlobalBool("verbose") {
		level = "debug"
	}
	return mawaqit.NewClient(mawaqit.ClientConfig{
		BaseURL:  ctx.GlobalString("base-url"),
		Username: user,
		Password: pass,
	}, logx.NewWriter(ctx.App.ErrWriter, level).Component("mawaqit")), nil
}

func requestContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func nearby(ctx *cli.Context) error {
	lat, err := strconv.ParseFloat(strings.TrimSpace(ctx.String("lat")), 64)
	if err != nil {
		return usage(ctx, "--lat is required and must be a number")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(ctx.String("lng")), 64)
	if err != nil {
		return usage(ctx, "--lng is required and must be a number")
	}
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	rc, cancel := requestContext()
	defer cancel()

	ms, err := c.Nearby(rc, lat, lng)
	if err != nil {
		return cli.NewExitError("mawaqit-util: "+err.Error(), 1)
	}
	printMosques(ctx.App.Writer, fmt.Sprintf("Found %d nearby mosques:", len(ms)), ms)
	return nil
}

func search(ctx *cli.Context) error {
	keyword := strings.TrimSpace(strings.Join(ctx.Args(), " "))
	if keyword == "" {
		return usage(ctx, "a search keyword is required")
	}
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	rc, cancel := requestContext()
	defer cancel()

	ms, err := c.Search(rc, keyword)
	if err != nil {
		return cli.NewExitError("mawaqit-util: "+err.Error(), 1)
	}
	printMosques(ctx.App.Writer, fmt.Sprintf("Found %d mosques matching '%s':", len(ms), keyword), ms)
	return nil
}

func generate(ctx *cli.Context, fs afero.Fs) error {
	args := ctx.Args()
	uuid := strings.TrimSpace(args.First())
	if uuid == "" {
		return usage(ctx, "a mosque UUID is required")
	}
	out := ctx.String("output")
	// flag parsing stops at the uuid; accept "<uuid> -o file" too
	if len(args) == 3 && (args[1] == "-o" || args[1] == "--output") {
		out = args[2]
	}
	c, err := newClient(ctx)
	if err != nil {
		return err
	}
	rc, cancel := requestContext()
	defer cancel()

	raw, err := c.PrayerTimes(rc, uuid)
	if err != nil {
		return cli.NewExitError("mawaqit-util: "+err.Error(), 1)
	}
	b, err := mawaqit.IndentDocument(raw)
	if err != nil {
		return cli.NewExitError("mawaqit-util: "+err.Error(), 1)
	}
	if err := afero.WriteFile(fs, out, b, 0o644); err != nil {
		return cli.NewExitError("mawaqit-util: "+err.Error(), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Generated: %s\n", out)
	return nil
}

func usage(ctx *cli.Context, msg string) error {
	fmt.Fprintln(ctx.App.ErrWriter, "Incorrect usage:", msg)
	_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
	return cli.NewExitError("", 1)
}

func printMosques(w io.Writer, header string, ms []mawaqit.Mosque) {
	fmt.Fprintf(w, "%s\n\n", header)
	for i, m := range ms {
		fmt.Fprintf(w, "%d. %s\n", i+1, orDefault(m.Name, "Unknown"))
		fmt.Fprintf(w, "   UUID: %s\n", m.UUID)
		fmt.Fprintf(w, "   Address: %s\n", orDefault(m.Localisation, "N/A"))
		fmt.Fprintln(w)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
