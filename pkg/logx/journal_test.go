package logx

import (
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFormatJournalJSON(t *testing.T) {
	msg, vars := formatJournalJSON([]byte(`{"level":"info","time":"x","message":"installed","comp":"schedule","jobs":7}`))
	assert.Equal(t, "installed", msg)
	assert.Equal(t, map[string]string{"COMP": "schedule", "JOBS": "7"}, vars)
}

func TestFormatJournalJSONRawLine(t *testing.T) {
	msg, vars := formatJournalJSON([]byte("  plain text\n"))
	assert.Equal(t, "plain text", msg)
	assert.Nil(t, vars)
}

func TestJournalKey(t *testing.T) {
	assert.Equal(t, "CALLER", journalKey("caller"))
	assert.Equal(t, "SUB_TAG", journalKey("sub-tag"))
	assert.Equal(t, "X", journalKey("_x"))
	assert.Equal(t, "FIELD", journalKey("__"))
}

func TestJournalPriority(t *testing.T) {
	assert.Equal(t, journal.PriWarning, journalPriority(zerolog.WarnLevel))
	assert.Equal(t, journal.PriErr, journalPriority(zerolog.ErrorLevel))
	assert.Equal(t, journal.PriDebug, journalPriority(zerolog.TraceLevel))
}
