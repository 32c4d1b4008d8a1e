package logger

import (
	"os"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "visit-service").Logger()
	switch env {
	case "development":
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "test":
		log = log.Level(zerolog.Disabled)
	}
	return log
}
