package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger. The level comes straight from LOG_LEVEL
// because config.Load itself needs a logger.
func New() zerolog.Logger {
	return NewWithWriter(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
}

func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

// ParseLevel falls back to info for empty or unknown values.
func ParseLevel(s string) zerolog.Level {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

var Module = fx.Provide(New)
