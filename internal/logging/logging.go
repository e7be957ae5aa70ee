package logging

import (
	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Format "json" is for production
// log shipping; anything else falls back to human-readable text.
func NewLogger(format string) *logrus.Logger {
	logger := logrus.New()
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}
