package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-go-golems/chatter/pkg/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. When quiet is set and no log
// file is configured, output is discarded; the full-screen UI owns the
// terminal. The returned closer releases the log file, if any.
func Init(s config.LogSettings, quiet bool) (io.Closer, error) {
	level := zerolog.InfoLevel
	if s.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s.Level))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", s.Level)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	switch {
	case s.File != "":
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open log file %s", s.File)
		}
		w = f
		closer = f
	case quiet:
		w = io.Discard
	}

	if s.Format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    s.File != "",
		}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
