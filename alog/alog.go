// Package alog provides the package-wide structured logger, a thin
// wrapper over logrus generalized from the teacher's own log.Logger
// interface to structured fields: a concurrent render/graph/update/device
// system needs every log line to say which node, quantum or thread it's
// about, not just a message string.
package alog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the interface every package in auragraph logs through.
type Logger interface {
	WithField(key string, value interface{}) Logger
	WithError(err error) Logger
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

type entry struct {
	*logrus.Entry
}

func (e entry) WithField(key string, value interface{}) Logger {
	return entry{e.Entry.WithField(key, value)}
}

func (e entry) WithError(err error) Logger {
	return entry{e.Entry.WithError(err)}
}

var root = logrus.New()

func init() {
	root.Out = os.Stderr
	root.SetLevel(logrus.InfoLevel)
	if os.Getenv("AURAGRAPH_DEBUG") != "" {
		root.SetLevel(logrus.DebugLevel)
	}
}

// SetLevel overrides the package logger's minimum level.
func SetLevel(level logrus.Level) {
	root.SetLevel(level)
}

// Named returns a Logger scoped to the given component name, e.g.
// "engine", "graph", "device".
func Named(component string) Logger {
	return entry{root.WithField("component", component)}
}
