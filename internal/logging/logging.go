// Package logging configures the process-wide structured logger. Every
// significant event is emitted as one JSON record; per-resource records
// carry at least resource_id and action, with error set on failures, while
// invocation-level records carry action and request_id.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger for Lambda execution: JSON
// output on stdout (CloudWatch Logs captures it as-is), unix-epoch
// timestamps, and an environment tag attached to every record.
func Init(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if environment != "" {
		logger = logger.With().Str("environment", environment).Logger()
	}
	log.Logger = logger
}

// ForResource returns a logger pre-populated with the fields the error
// handling design requires on every handler-related log line.
func ForResource(action, resourceID string) zerolog.Logger {
	return log.With().Str("action", action).Str("resource_id", resourceID).Logger()
}
