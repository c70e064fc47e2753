package utils

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "LOG_LEVEL"

// ParseLogLevel accepts logrus level names in any case. Empty means info.
func ParseLogLevel(level string) (logrus.Level, error) {
	if strings.TrimSpace(level) == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel, errors.Wrapf(err, "logLevel")
	}
	return lvl, nil
}

// NewLogger builds the process logger writing text lines to out.
func NewLogger(cfg Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	lvl, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Falling back to info level")
	}
	logger.SetLevel(lvl)
	return logger
}
