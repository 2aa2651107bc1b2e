package logx

import (
	"time"

	"github.com/rs/zerolog"
)

// Field mutates a zerolog event. Fields apply in order, so a key set twice
// keeps the later value.
type Field func(e *zerolog.Event)

func String(k, v string) Field          { return func(e *zerolog.Event) { e.Str(k, v) } }
func Strings(k string, v []string) Field { return func(e *zerolog.Event) { e.Strs(k, v) } }
func Int(k string, v int) Field          { return func(e *zerolog.Event) { e.Int(k, v) } }
func Bool(k string, v bool) Field        { return func(e *zerolog.Event) { e.Bool(k, v) } }
func Float64(k string, v float64) Field  { return func(e *zerolog.Event) { e.Float64(k, v) } }
func Time(k string, v time.Time) Field   { return func(e *zerolog.Event) { e.Time(k, v) } }
func Any(k string, v any) Field          { return func(e *zerolog.Event) { e.Interface(k, v) } }

func Duration(k string, v time.Duration) Field {
	return func(e *zerolog.Event) { e.Dur(k, v) }
}

// Err attaches err under "err"; a nil error adds nothing.
func Err(err error) Field {
	return func(e *zerolog.Event) {
		if err != nil {
			e.Err(err)
		}
	}
}

func apply(e *zerolog.Event, groups ...[]Field) {
	for _, fs := range groups {
		for _, f := range fs {
			if f != nil {
				f(e)
			}
		}
	}
}
