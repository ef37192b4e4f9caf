// Package logging configures the process logrus logger.
package logging

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLevel normalizes a level string. Empty means info.
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error", "err":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, errors.New("invalid log level")
	}
}

type Options struct {
	Level  string
	JSON   bool
	Writer io.Writer
}

// Configure applies opt to the logrus standard logger, which the rest of
// the module logs through, and returns it.
func Configure(opt Options) (*logrus.Logger, error) {
	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, err
	}
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}

	var f logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if opt.JSON {
		f = &logrus.JSONFormatter{}
	}

	lg := logrus.StandardLogger()
	lg.SetOutput(w)
	lg.SetLevel(level)
	lg.SetFormatter(f)
	return lg, nil
}
