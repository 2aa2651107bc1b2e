package logx

import (
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	LevelTrace = zerolog.TraceLevel
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger is a structured logger with fixed fields.
//
// A Logger obtained from a Service follows the sinks installed by later
// Apply calls. The zero value discards everything.
type Logger struct {
	svc    *Service
	zl     *zerolog.Logger
	fields []Field
}

func init() {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = timeFormat
}

// Nop returns a logger that never writes anything.
func Nop() Logger {
	zl := zerolog.Nop()
	return Logger{zl: &zl}
}

// NewConsole returns a standalone human-readable logger on stdout, for use
// before the config has been read.
func NewConsole(level string) Logger {
	return standalone(consoleWriter(Stdout()), level)
}

// NewWriter returns a standalone logger writing JSON lines to w.
func NewWriter(w io.Writer, level string) Logger {
	return standalone(w, level)
}

func standalone(w io.Writer, level string) Logger {
	zl := newRoot(w, ParseLevel(level))
	return Logger{zl: &zl}
}

func newRoot(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func (l Logger) IsZero() bool { return l.svc == nil && l.zl == nil && len(l.fields) == 0 }

func (l Logger) root() zerolog.Logger {
	switch {
	case l.svc != nil:
		return l.svc.current()
	case l.zl != nil:
		return *l.zl
	default:
		return zerolog.Nop()
	}
}

// Enabled reports whether level would be written.
func (l Logger) Enabled(level Level) bool { return level >= l.root().GetLevel() }

// With returns a child logger carrying extra fields.
func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	cp := l
	cp.fields = append(append([]Field(nil), l.fields...), fields...)
	return cp
}

// Component tags the child logger with comp=name.
func (l Logger) Component(name string) Logger { return l.With(String("comp", name)) }

func (l Logger) Trace(msg string, fields ...Field) { l.write(zerolog.TraceLevel, msg, fields) }
func (l Logger) Debug(msg string, fields ...Field) { l.write(zerolog.DebugLevel, msg, fields) }
func (l Logger) Info(msg string, fields ...Field)  { l.write(zerolog.InfoLevel, msg, fields) }
func (l Logger) Warn(msg string, fields ...Field)  { l.write(zerolog.WarnLevel, msg, fields) }
func (l Logger) Error(msg string, fields ...Field) { l.write(zerolog.ErrorLevel, msg, fields) }

func (l Logger) write(level zerolog.Level, msg string, fields []Field) {
	zl := l.root()
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	if c := caller(3); c != "" {
		e.Str(zerolog.CallerFieldName, c)
	}
	apply(e, l.fields, fields)
	e.Msg(msg)
}

// caller renders the call site as file:line.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok || file == "" {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// ParseLevel maps a level name to a zerolog level; unknown names mean info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
		FormatCaller: func(i any) string {
			s, _ := i.(string)
			return s
		},
	}
}
