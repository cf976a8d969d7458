//go:build !tinygo

package sonar

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// SetLogLevel sets the level by name: "debug", "info", "warn", ...
func SetLogLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(l)
	return nil
}

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
