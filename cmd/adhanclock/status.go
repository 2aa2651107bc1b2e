package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli"

	"adhanclock/internal/app"
	"adhanclock/internal/config"
)

var (
	colorPrimary = lipgloss.Color("#2EC4B6")
	colorMuted   = lipgloss.Color("#666666")
	colorError   = lipgloss.Color("#E74C3C")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle = lipgloss.NewStyle().Width(12)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)

func status(ctx *cli.Context) error {
	var flags config.Record
	if u := strings.TrimSpace(ctx.String("cron-user")); u != "" {
		flags.CronUser = &u
	}
	a, err := app.New(app.Options{ConfigPath: ctx.String("config"), Root: ctx.String("root"), Flags: flags})
	if err != nil {
		return fail(ctx, err)
	}
	defer a.Close()

	c, cancel := signalContext()
	defer cancel()

	st, err := a.Status(c)
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintln(ctx.App.Writer, renderStatus(st, time.Now()))
	return nil
}

func renderStatus(st app.Status, now time.Time) string {
	rows := []string{titleStyle.Render("adhanclock jobs")}
	if st.CronUser != "" {
		rows = append(rows, mutedStyle.Render("crontab of "+st.CronUser))
	}
	if len(st.Jobs) == 0 {
		rows = append(rows, mutedStyle.Render("no jobs installed"))
	}
	for _, js := range st.Jobs {
		name := js.Job.SubTag
		if name == "" {
			name = "?"
		}
		next := "-"
		if !js.Next.IsZero() {
			next = js.Next.Format("Mon 02 Jan 15:04") + mutedStyle.Render(" (in "+js.Next.Sub(now).Truncate(time.Minute).String()+")")
		}
		rows = append(rows, labelStyle.Render(name)+next)
	}

	if st.HasLastRun {
		r := st.LastRun
		line := fmt.Sprintf("last run %s: %d jobs", r.At.Format(time.RFC3339), r.Jobs)
		if r.Error != "" {
			line = errStyle.Render(fmt.Sprintf("last run %s failed: %s", r.At.Format(time.RFC3339), r.Error))
		}
		rows = append(rows, "", line)
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
