package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on rs/zerolog. Output goes to stderr so the
// process command can stream scenario JSON on stdout uncontaminated.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a component-tagged logger. GHDS_ENV=dev switches to
// the human-readable console writer, GHDS_LOG_LEVEL sets the threshold
// (default info).
func NewZerologLogger(component string) Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("GHDS_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	var out = os.Stderr
	var z zerolog.Logger
	if strings.ToLower(os.Getenv("GHDS_ENV")) == "dev" {
		writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		z = zerolog.New(writer)
	} else {
		z = zerolog.New(out)
	}
	z = z.Level(level).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
