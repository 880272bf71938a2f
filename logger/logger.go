// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logger defines the leveled logging interface used by the
// retry executor, with a no-op implementation and one backed by the
// standard library's log package.
//
// Plug in any logging library by implementing Logger.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is a leveled, printf-style logger. Implementations must be
// safe for concurrent use by multiple goroutines.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// A Level is a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if l < Debug || l > Error {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Noop discards everything.
type Noop struct{}

var _ Logger = Noop{}

func (_ Noop) Debugf(_ string, _ ...interface{}) {}
func (_ Noop) Infof(_ string, _ ...interface{})  {}
func (_ Noop) Warnf(_ string, _ ...interface{})  {}
func (_ Noop) Errorf(_ string, _ ...interface{}) {}

// Std writes messages at or above a minimum level to a *log.Logger,
// prefixed with the level name in brackets, for example:
//
//	[WARN] retryx: attempt 1 of 3 failed ...
type Std struct {
	min   Level
	print func(msg string)
}

var _ Logger = (*Std)(nil)

// NewStd returns a Std logger writing to l. If l is nil, a logger
// writing to standard error with the standard flags is used.
func NewStd(l *log.Logger, min Level) *Std {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Std{
		min: min,
		print: func(msg string) {
			l.Println(msg)
		},
	}
}

func (s *Std) log(l Level, format string, args []interface{}) {
	if l < s.min {
		return
	}
	s.print(fmt.Sprintf("["+l.String()+"] "+format, args...))
}

func (s *Std) Debugf(format string, args ...interface{}) { s.log(Debug, format, args) }
func (s *Std) Infof(format string, args ...interface{})  { s.log(Info, format, args) }
func (s *Std) Warnf(format string, args ...interface{})  { s.log(Warn, format, args) }
func (s *Std) Errorf(format string, args ...interface{}) { s.log(Error, format, args) }
