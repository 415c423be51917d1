// Package telemetry configures switchboard's structured logging. This
// router has no long-running server process to instrument and no
// metrics/tracing backend in scope, so Init only sets up the global
// zerolog logger: config in, side effect on the global logger.
package telemetry

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Settings configures the global zerolog logger.
type Settings struct {
	// Level is one of zerolog's level strings: "debug", "info", "warn",
	// "error", "disabled". Defaults to "info" if blank or unrecognized.
	Level string
	// Pretty enables a human-readable console writer instead of JSON,
	// for local/demo use; production deployments should leave it false.
	Pretty bool
}

// Init sets the global zerolog logger according to settings. Call this
// once, early in main().
func Init(settings Settings) {
	level, err := zerolog.ParseLevel(settings.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if settings.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
