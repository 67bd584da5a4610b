/*
 * Copyright 2024 The Mewt Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package glog is a small leveled line logger, extending the project's
// historical singleton-writer log package (pkg/log/log.go) from a flat
// info/error split into five levels, gated by SetLevel, and colored with
// github.com/fatih/color.
package glog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Level is a logging severity, ordered from most to least verbose.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses an all-lower-case or all-upper-case level name,
// defaulting to Info on an unrecognized value.
func ParseLevel(s string) Level {
	switch s {
	case "trace", "TRACE":
		return Trace
	case "debug", "DEBUG":
		return Debug
	case "warn", "WARN", "warning", "WARNING":
		return Warn
	case "error", "ERROR":
		return Error
	default:
		return Info
	}
}

var (
	fgYellow = color.New(color.FgYellow).SprintFunc()
	fgRed    = color.New(color.FgRed).SprintFunc()
	fgCyan   = color.New(color.FgCyan).SprintFunc()
)

var (
	mutex    sync.Mutex
	instance = &logger{out: os.Stdout, eOut: os.Stderr, level: Info, color: true}
)

type logger struct {
	out   io.Writer
	eOut  io.Writer
	level Level
	color bool
}

// Init installs the process-wide logger. Passing nil writers keeps the
// defaults (stdout/stderr).
func Init(out, eOut io.Writer, level Level, useColor bool) {
	mutex.Lock()
	defer mutex.Unlock()
	if out == nil {
		out = os.Stdout
	}
	if eOut == nil {
		eOut = os.Stderr
	}
	instance = &logger{out: out, eOut: eOut, level: level, color: useColor}
	color.NoColor = !useColor
}

// Dummy installs a logger that discards everything, for tests.
func Dummy() {
	Init(io.Discard, io.Discard, Error+1, false)
}

func current() *logger {
	mutex.Lock()
	defer mutex.Unlock()
	return instance
}

func log(level Level, a any) {
	l := current()
	if level < l.level {
		return
	}
	w := l.out
	prefix := level.String()
	if level >= Warn {
		w = l.eOut
	}
	if l.color {
		switch {
		case level == Warn:
			prefix = fgYellow(prefix)
		case level == Error:
			prefix = fgRed(prefix)
		case level == Debug || level == Trace:
			prefix = fgCyan(prefix)
		}
	}
	_, _ = fmt.Fprintf(w, "%s: %v\n", prefix, a)
}

func logf(level Level, format string, args ...any) {
	log(level, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...any) { logf(Trace, format, args...) }
func Traceln(a any)                     { log(Trace, a) }
func Debugf(format string, args ...any) { logf(Debug, format, args...) }
func Debugln(a any)                     { log(Debug, a) }
func Infof(format string, args ...any)  { logf(Info, format, args...) }
func Infoln(a any)                      { log(Info, a) }
func Warnf(format string, args ...any)  { logf(Warn, format, args...) }
func Warnln(a any)                      { log(Warn, a) }
func Errorf(format string, args ...any) { logf(Error, format, args...) }
func Errorln(a any)                     { log(Error, a) }
