// Package crontab models tagged cron jobs and stores them in the host crontab.
package crontab

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one managed crontab line.
//
// Rendered as:
//
//	M H D * * <command> # <tag>:<subtag>
type Job struct {
	Minute string
	Hour   string
	Day    string // day of month; "" means "*"

	Command string
	Tag     string
	SubTag  string
}

// Daily builds a job firing every day at hour:minute.
func Daily(hour, minute int, command, tag, subTag string) Job {
	return Job{
		Minute:  fmt.Sprint(minute),
		Hour:    fmt.Sprint(hour),
		Command: command,
		Tag:     tag,
		SubTag:  subTag,
	}
}

// Spec returns the five-field time spec.
func (j Job) Spec() string {
	return strings.Join([]string{field(j.Minute), field(j.Hour), field(j.Day), "*", "*"}, " ")
}

// Marker returns the trailing comment identifying the job, without "# ".
func (j Job) Marker() string {
	if j.SubTag == "" {
		return j.Tag
	}
	return j.Tag + ":" + j.SubTag
}

// Line renders the job as a crontab line.
func (j Job) Line() string {
	line := j.Spec() + " " + strings.TrimSpace(j.Command)
	if j.Tag != "" {
		line += " # " + j.Marker()
	}
	return line
}

func field(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "*"
	}
	return s
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks a five-field time spec.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Next returns the first firing time of j strictly after after.
func Next(j Job, after time.Time) (time.Time, error) {
	s, err := parser.Parse(j.Spec())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron spec %q: %w", j.Spec(), err)
	}
	return s.Next(after), nil
}

// ParseLine recognizes a line carrying a trailing "# tag[:subtag]" marker.
// Only lines whose month and weekday fields are "*" are recognized; any other
// line is reported as not a job and should be kept verbatim.
func ParseLine(line string) (Job, bool) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "@") {
		return Job{}, false
	}
	i := strings.LastIndex(s, " # ")
	if i < 0 {
		return Job{}, false
	}
	marker := strings.TrimSpace(s[i+3:])
	if marker == "" || strings.ContainsAny(marker, " \t") {
		return Job{}, false
	}
	fields, rest := splitFields(strings.TrimSpace(s[:i]), 5)
	if len(fields) != 5 || rest == "" || fields[3] != "*" || fields[4] != "*" {
		return Job{}, false
	}
	tag, sub, _ := strings.Cut(marker, ":")
	day := fields[2]
	if day == "*" {
		day = ""
	}
	return Job{
		Minute:  fields[0],
		Hour:    fields[1],
		Day:     day,
		Command: rest,
		Tag:     tag,
		SubTag:  sub,
	}, true
}

// splitFields cuts n whitespace-separated fields off s and returns the
// remainder with its inner spacing intact.
func splitFields(s string, n int) ([]string, string) {
	out := make([]string, 0, n)
	for len(out) < n {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			out = append(out, s)
			s = ""
			break
		}
		out = append(out, s[:end])
		s = s[end:]
	}
	return out, strings.TrimSpace(s)
}
