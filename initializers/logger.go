package initializers

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Logger zerolog.Logger = zerolog.Nop()

func InitLogger(cfg *Config) zerolog.Logger {
	Logger = NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	return Logger
}

func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "amexan-store").Logger()
}
