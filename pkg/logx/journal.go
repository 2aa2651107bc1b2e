package logx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter is a zerolog sink that forwards each JSON line to journald.
// The message becomes MESSAGE; every other top-level key is sent as an
// upper-cased journal field.
type journalWriter struct{}

// newJournalWriter returns nil when journald is not reachable.
func newJournalWriter() *journalWriter {
	if !journal.Enabled() {
		return nil
	}
	return &journalWriter{}
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	msg, vars := formatJournalJSON(p)
	if msg == "" {
		return len(p), nil
	}
	// Journal failures must never break the run.
	_ = journal.Send(msg, journalPriority(level), vars)
	return len(p), nil
}

func formatJournalJSON(p []byte) (string, map[string]string) {
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return strings.TrimSpace(string(p)), nil
	}
	msg, _ := m[zerolog.MessageFieldName].(string)
	vars := make(map[string]string, len(m))
	for k, v := range m {
		switch k {
		case zerolog.MessageFieldName, zerolog.LevelFieldName, zerolog.TimestampFieldName:
			continue
		}
		vars[journalKey(k)] = fmt.Sprint(v)
	}
	return msg, vars
}

// journalKey maps a log field name to a valid journal field name
// (upper-case letters, digits and underscores, not starting with '_').
func journalKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(k) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), "_")
	if s == "" {
		return "FIELD"
	}
	return s
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return journal.PriDebug
	case zerolog.InfoLevel:
		return journal.PriInfo
	case zerolog.WarnLevel:
		return journal.PriWarning
	case zerolog.ErrorLevel:
		return journal.PriErr
	case zerolog.FatalLevel:
		return journal.PriCrit
	case zerolog.PanicLevel:
		return journal.PriEmerg
	default:
		return journal.PriNotice
	}
}
