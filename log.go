package nats

import "github.com/sirupsen/logrus"

// Logger is the diagnostic sink capability the core consumes. Handler
// panics, protocol errors and reconnect events are reported through it;
// nothing in the core ever writes to stdout/stderr directly.
type Logger interface {
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

var nopLoggerInstance Logger = nopLogger{}

// logrusLogger adapts a *logrus.Logger (or any *logrus.Entry-compatible
// field set) to the Logger capability. Build one with NewLogrusLogger and
// install it with WithLogger; when Options.Logger is left unset the core
// uses a no-op logger instead.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger adapts l to the Logger capability, tagging every line
// with component=nats so it is easy to filter out of an application's
// shared logrus output.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return &logrusLogger{entry: l.WithField("component", "nats")}
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
