package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. format is "json" or
// "console"; an unknown level falls back to info.
func Init(level, format string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	switch format {
	case "json":
	case "console", "":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	log.Debug().Str("level", lvl.String()).Str("format", format).Msg("logger initialized")
	return nil
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// LogError logs an error message
func LogError(err error, format string, args ...any) {
	log.Error().Err(err).Msgf(format, args...)
}

// LogPanic logs a recovered panic with its stack trace
func LogPanic(r any) {
	log.Error().Str("panic", fmt.Sprint(r)).Str("stack", string(debug.Stack())).Msg("recovered from panic")
}
