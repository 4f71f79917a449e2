package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// defaultLevel применяется, если LOG_LEVEL пуст или некорректен
const defaultLevel = logrus.InfoLevel

func New(logLevel string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{})

	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = defaultLevel
	}
	log.SetLevel(level)
	return log
}
