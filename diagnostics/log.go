// Package diagnostics is a thin wrapper over logrus, used by the grammar
// builder to report malformed rule text without aborting the program (see
// SPEC_FULL.md's error-handling design: grammar-build errors are reported
// to a diagnostic stream, not thrown).
//
// Grounded on the teacher's ambient stack being dependency-free: logrus
// itself, and the wrapper shape (a small Logger interface plus a
// package-level default instance), are adopted from
// open-policy-agent/opa's log/log.go, trimmed to the handful of levels
// this library's build-time diagnostics actually use.
package diagnostics

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the interface New and Global return. Its Warnf method is all
// grammar.Grammar.SetLogger needs, so a Logger can be passed there directly;
// it is satisfied structurally, so callers may substitute their own logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logger struct {
	entry *logrus.Entry
}

// New creates a standalone Logger backed by its own logrus instance.
func New() Logger {
	return logger{entry: logrus.NewEntry(logrus.New())}
}

func (l logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

var (
	origLogger   = logrus.New()
	globalLogger = logger{entry: logrus.NewEntry(origLogger)}
)

// Global returns the package-wide default logger.
func Global() Logger {
	return globalLogger
}

// SetLevel sets the default logger's level ("debug", "info", "warn", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	origLogger.SetLevel(lvl)
	return nil
}

// SetOutput redirects the default logger's output.
func SetOutput(w io.Writer) {
	origLogger.SetOutput(w)
}
