// Package logging emits structured lifecycle events: one event name plus
// extra fields, never a formatted message.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Event names emitted across the session, execution, and persistence
// subsystems.
const (
	EventExecutionStart   = "execution.start"
	EventExecutionComplete = "execution.complete"
	EventSecurityPrefix   = "security."

	EventSessionCreated         = "session.created"
	EventSessionRetrieved       = "session.retrieved"
	EventSessionDeleted         = "session.deleted"
	EventMetadataCreated        = "session.metadata.created"
	EventMetadataUpdated        = "session.metadata.updated"
	EventPruneStarted           = "session.prune.started"
	EventPruneCandidate         = "session.prune.candidate"
	EventPruneSkipped           = "session.prune.skipped"
	EventPruneDeleted           = "session.prune.deleted"
	EventPruneCompleted         = "session.prune.completed"

	EventFileListed  = "session.file.listed"
	EventFileRead    = "session.file.read"
	EventFileWritten = "session.file.written"
	EventFileDeleted = "session.file.deleted"
)

// Fields is a structured-field bag attached to one event.
type Fields = logrus.Fields

// Logger is the handle every component accepts as a dependency. It never
// mutates global logging state: each Logger wraps its own *logrus.Logger
// instance rather than calling the logrus package-level functions.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing JSON-formatted events to w. Passing nil uses
// the process's standard error.
func New(w io.Writer) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	if w != nil {
		l.SetOutput(w)
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// Noop returns a Logger that discards every event, for callers that don't
// care about lifecycle observability.
func Noop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a Logger that prefixes every subsequent event with the given
// fields (typically session_id).
func (lg *Logger) With(fields Fields) *Logger {
	return &Logger{entry: lg.entry.WithFields(fields)}
}

// Event emits a structured lifecycle event by name with extra fields only.
func (lg *Logger) Event(name string, fields Fields) {
	lg.entry.WithFields(fields).Info(name)
}

// Warn emits a structured event at warning level, used for soft errors
// that are recovered from rather than propagated (e.g. corrupted state
// treated as empty).
func (lg *Logger) Warn(name string, fields Fields) {
	lg.entry.WithFields(fields).Warn(name)
}

// Security emits a security.<kind> event.
func (lg *Logger) Security(kind string, fields Fields) {
	lg.Event(EventSecurityPrefix+kind, fields)
}
