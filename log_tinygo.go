//go:build tinygo

package sonar

import (
	"fmt"
)

type level uint8

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

var logLevel = levelInfo

// SetLogLevel sets the level by name: "debug", "info" or "warn"
func SetLogLevel(name string) error {
	switch name {
	case "debug":
		logLevel = levelDebug
	case "info":
		logLevel = levelInfo
	case "warn", "warning":
		logLevel = levelWarn
	default:
		return fmt.Errorf("not a valid log level: %q", name)
	}
	return nil
}

func logf(l level, format string, args ...any) {
	if l >= logLevel {
		fmt.Printf(format+"\r\n", args...)
	}
}

func Debugf(format string, args ...any) { logf(levelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(levelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(levelWarn, format, args...) }
