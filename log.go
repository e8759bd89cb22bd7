package oleread

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = &logrus.Logger{
		Out:       io.Discard,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.WarnLevel,
	}
}

func EnableDebug() {
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.DebugLevel)
}

func DisableDebug() {
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.WarnLevel)
}

// SetLogOutput redirects the package logger, e.g. into a test buffer.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
