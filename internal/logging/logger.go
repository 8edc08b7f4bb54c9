// Package logging configures the process-wide logrus logger and carries request-scoped
// log fields through context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// New returns a logrus logger writing to out (stdout when nil) at the given level.
// format "text" selects the text formatter; anything else is JSON.
func New(level, format string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(level))
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

func parseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// WithEntry returns a context carrying entry; FromContext on the result returns it.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the request-scoped entry stored by WithEntry, or fallback with ctx attached.
func FromContext(ctx context.Context, fallback logrus.FieldLogger) *logrus.Entry {
	if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok && e != nil {
		return e.WithContext(ctx)
	}
	if fallback == nil {
		return logrus.NewEntry(logrus.StandardLogger()).WithContext(ctx)
	}
	return fallback.WithFields(logrus.Fields{}).WithContext(ctx)
}

// Discard returns a logger that drops everything. Used by tests and tools.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
