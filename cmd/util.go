package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultStringLength = 1024
	DefaultErrorLimit   = 5
	DefaultVerbose      = 1
)

type Options struct {
	File         string
	LogFile      string
	Verbose      int
	FailPercent  int
	StringLength int
	ErrorLimit   int
	Seed         int64
}

func DefaultOptions() *Options {
	return &Options{
		Verbose:      DefaultVerbose,
		StringLength: DefaultStringLength,
		ErrorLimit:   DefaultErrorLimit,
		Seed:         1,
	}
}

// Fill in defaults for values the command line left out of range
func (o *Options) normalize() {
	if o.StringLength < 1 {
		o.StringLength = DefaultStringLength
	}
	if o.ErrorLimit < 1 {
		o.ErrorLimit = DefaultErrorLimit
	}
	if o.FailPercent < 0 {
		o.FailPercent = 0
	}
	if o.FailPercent > 100 {
		o.FailPercent = 100
	}
}

// Map a verbosity level onto a log level
func logLevel(verbose int) logrus.Level {
	switch {
	case verbose <= 0:
		return logrus.ErrorLevel
	case verbose == 1:
		return logrus.WarnLevel
	case verbose == 2:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

func verbosity(level logrus.Level) int {
	switch {
	case level <= logrus.ErrorLevel:
		return 0
	case level == logrus.WarnLevel:
		return 1
	case level == logrus.InfoLevel:
		return 2
	default:
		return 3
	}
}

// Check if a given file path exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !errors.Is(err, os.ErrNotExist)
}
