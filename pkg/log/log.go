package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// New builds the service logger. Local environments get a human-readable
// console writer, everything else emits JSON lines.
func New(appEnv string) Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if appEnv == "local" || appEnv == "test" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
