// Package logging builds the zerolog logger used by every component
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"webserver/internal/config"
)

// Level maps a verbosity to the lowest zerolog level that is printed
func Level(v config.Verbosity) zerolog.Level {
	switch v {
	case config.VerbositySilent:
		return zerolog.Disabled
	case config.VerbosityError:
		return zerolog.ErrorLevel
	case config.VerbosityWarn:
		return zerolog.WarnLevel
	case config.VerbosityInfo:
		return zerolog.InfoLevel
	case config.VerbosityDebug:
		return zerolog.DebugLevel
	default:
		return Level(config.DefaultVerbosity)
	}
}

// New returns a console logger when w is a terminal and a JSON logger
// otherwise
func New(v config.Verbosity, w io.Writer) zerolog.Logger {
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return NewJSON(v, w)
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).Level(Level(v)).With().Timestamp().Logger()
}

// NewJSON returns a logger emitting one JSON object per line
func NewJSON(v config.Verbosity, w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(Level(v)).With().Timestamp().Logger()
}
