// Package logging builds the structured logger shared by the server, the
// email worker and the scheduler.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w (default [os.Stderr]) with
// timestamps enabled and the level parsed from level.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps debug|info|warn|error to a [log.Level], defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with the component name.
func Component(l *log.Logger, name string) *log.Logger {
	return l.With("component", name)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
