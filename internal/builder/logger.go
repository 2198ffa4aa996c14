package builder

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
)

// SetupLogger configures the global zerolog logger and makes it the default
// for contexts that carry no logger of their own.
func SetupLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	switch cfg.Format {
	case "json":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	case "console", "":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
	zerolog.DefaultContextLogger = &log.Logger
	return log.Logger, nil
}
