// Package logging builds the installer's logrus logger and carries per-run
// loggers through contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/sirupsen/logrus"

	"github.com/snowfallorg/icicle/internal/messages"
)

// Identifier names the installer in the journal.
const Identifier = "icicle"

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures New.
type Options struct {
	Level  string
	Format string
	// Journal forwards entries to journald when it is available.
	Journal bool
}

// New builds a logger writing to out.
func New(opts Options, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := opts.Level
	if level == "" {
		level = logrus.InfoLevel.String()
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf(messages.LoggingInvalidLevelFmt, level, err)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf(messages.LoggingInvalidFormatFmt, opts.Format)
	}

	if opts.Journal {
		if journal.Enabled() {
			logger.AddHook(NewJournalHook(Identifier))
		} else {
			logger.Warn(messages.LoggingJournalMissing)
		}
	}
	return logger, nil
}

type loggerKey struct{}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger carried by ctx, else fallback, else the
// standard logger.
func FromContext(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger); ok {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return logrus.StandardLogger()
}
