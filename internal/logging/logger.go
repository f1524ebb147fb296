// Package logging initializes the global zerolog logger for the service.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger from environment variables.
// SORTYX_LOG_LEVEL controls the log level: debug, info, warn, error
// (default: info). Set SORTYX_LOG_JSON=1 to emit raw JSON instead of the
// console writer, for log shippers.
func Init() {
	switch os.Getenv("SORTYX_LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if os.Getenv("SORTYX_LOG_JSON") == "1" {
		log.Logger = log.Output(os.Stderr)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
