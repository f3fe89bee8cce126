package internal

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Discard is used wherever no logger was provided.
var Discard logrus.FieldLogger = func() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}()

func DebugTimer(logger logrus.FieldLogger, msg string) func() {
	start := time.Now()
	logger.Debugf("start: %s", msg)
	return func() {
		logger.WithField("elapsed", time.Since(start).String()).Debugf("done:  %s", msg)
	}
}
