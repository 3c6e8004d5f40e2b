package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger returns a JSON logger in production and a text logger
// everywhere else. An unknown level falls back to info.
func newLogger(environment, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
