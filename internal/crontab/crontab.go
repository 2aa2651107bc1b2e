package crontab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	logx "adhanclock/pkg/logx"
)

// Runner executes the crontab binary.
type Runner interface {
	Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error)
}

// ExitError carries the stderr of a failed crontab invocation.
type ExitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := "crontab " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExecRunner runs the crontab binary found in PATH (or Path when set).
type ExecRunner struct {
	Path string
}

func (r ExecRunner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	bin := r.Path
	if bin == "" {
		bin = "crontab"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ExitError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}

type entry struct {
	raw   string // original text; empty for jobs added in this session
	job   Job
	isJob bool
}

// Crontab is a Store over one user's crontab. Lines not recognized as
// tagged jobs are written back exactly as read.
type Crontab struct {
	runner Runner
	user   string
	log    logx.Logger

	entries []entry
}

// Load reads the current crontab. A user without a crontab starts empty.
func Load(ctx context.Context, runner Runner, user string, log logx.Logger) (*Crontab, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	c := &Crontab{runner: runner, user: strings.TrimSpace(user), log: log}

	out, err := runner.Run(ctx, nil, c.args("-l")...)
	if err != nil {
		var ee *ExitError
		if errors.As(err, &ee) && strings.Contains(strings.ToLower(ee.Stderr), "no crontab for") {
			log.Debug("no crontab yet", logx.String("user", c.user))
			return c, nil
		}
		return nil, fmt.Errorf("read crontab: %w", err)
	}
	c.entries = parseTable(string(out))
	log.Debug("crontab loaded", logx.Int("lines", len(c.entries)))
	return c, nil
}

func parseTable(s string) []entry {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make([]entry, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if j, ok := ParseLine(line); ok {
			out = append(out, entry{raw: line, job: j, isJob: true})
			continue
		}
		out = append(out, entry{raw: line})
	}
	return out
}

func (c *Crontab) args(a ...string) []string {
	if c.user == "" {
		return a
	}
	return append([]string{"-u", c.user}, a...)
}

func (c *Crontab) List(tag string) []Job {
	jobs := make([]Job, 0, len(c.entries))
	for _, e := range c.entries {
		if e.isJob {
			jobs = append(jobs, e.job)
		}
	}
	return filter(jobs, tag)
}

func (c *Crontab) RemoveByTag(tag string) int {
	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if e.isJob && e.job.Tag == tag {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	return removed
}

func (c *Crontab) Add(job Job) error {
	if err := Validate(job.Spec()); err != nil {
		return err
	}
	if strings.ContainsAny(job.Command, "\n\r") {
		return fmt.Errorf("crontab command for %s contains a newline", job.Marker())
	}
	c.entries = append(c.entries, entry{job: job, isJob: true})
	return nil
}

// Render returns the full table text as it would be installed.
func (c *Crontab) Render() string {
	var b strings.Builder
	for _, e := range c.entries {
		if e.raw != "" || !e.isJob {
			b.WriteString(e.raw)
		} else {
			b.WriteString(e.job.Line())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Persist replaces the user's crontab with the current table.
func (c *Crontab) Persist(ctx context.Context) error {
	table := c.Render()
	if _, err := c.runner.Run(ctx, []byte(table), c.args("-")...); err != nil {
		return fmt.Errorf("install crontab: %w", err)
	}
	c.log.Info("crontab installed", logx.Int("lines", len(c.entries)), logx.String("user", c.user))
	return nil
}
