// Package logging builds the process logger from an explicit configuration.
// Nothing here touches the logrus package level logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	// Debug lowers the level from info to debug.
	Debug bool
	// File, if set, receives the logs instead of Output. It is opened in append mode.
	File   string
	Format Format
	// Output defaults to stderr.
	Output io.Writer
}

// New returns the configured logger and a function releasing any file it opened.
func New(cfg Config) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	switch cfg.Format {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	case FormatJSON:
		logger.SetFormatter(new(logrus.JSONFormatter))
	default:
		return nil, nil, fmt.Errorf("unknown log format %q: must be one of %s or %s", cfg.Format, FormatText, FormatJSON)
	}

	closer := func() error { return nil }

	switch {
	case cfg.File != "":
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(file)
		closer = file.Close
	case cfg.Output != nil:
		logger.SetOutput(cfg.Output)
	default:
		logger.SetOutput(os.Stderr)
	}

	return logger, closer, nil
}
