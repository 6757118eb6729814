package logging

import (
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/sirupsen/logrus"
)

var severityMap = map[logrus.Level]journal.Priority{
	logrus.TraceLevel: journal.PriDebug,
	logrus.DebugLevel: journal.PriDebug,
	logrus.InfoLevel:  journal.PriInfo,
	logrus.WarnLevel:  journal.PriWarning,
	logrus.ErrorLevel: journal.PriErr,
	logrus.FatalLevel: journal.PriCrit,
	logrus.PanicLevel: journal.PriEmerg,
}

// JournalHook forwards entries to the systemd journal with their fields as
// journal variables.
type JournalHook struct {
	// Identifier is sent as SYSLOG_IDENTIFIER.
	Identifier string
	send       func(message string, priority journal.Priority, vars map[string]string) error
}

// NewJournalHook returns a hook that sends to the local journal.
func NewJournalHook(identifier string) *JournalHook {
	return &JournalHook{Identifier: identifier, send: journal.Send}
}

// Fire implements logrus.Hook.
func (h *JournalHook) Fire(entry *logrus.Entry) error {
	vars := journalVars(entry.Data)
	if h.Identifier != "" {
		vars["SYSLOG_IDENTIFIER"] = h.Identifier
	}
	return h.send(entry.Message, severityMap[entry.Level], vars)
}

// Levels implements logrus.Hook.
func (h *JournalHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// journalVars upper-cases field names and replaces anything the journal
// rejects with '_'. Journal variables may not start with '_'.
func journalVars(data logrus.Fields) map[string]string {
	vars := make(map[string]string, len(data)+1)
	for k, v := range data {
		key := strings.TrimLeft(strings.Map(journalKeyRune, k), "_")
		if key == "" {
			continue
		}
		vars[key] = fmt.Sprint(v)
	}
	return vars
}

func journalKeyRune(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return r
	case r >= 'a' && r <= 'z':
		return r - 'a' + 'A'
	}
	return '_'
}
