// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package logging is a small levelled wrapper around the standard logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Level orders severities from most to least verbose.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// Logger writes "[LEVEL] component: message" lines to a *log.Logger.
type Logger struct {
	mu        sync.Mutex
	level     Level
	component string
	inner     *log.Logger
}

// New returns a Logger writing to w with the standard log flags.
func New(w io.Writer, level Level, component string) *Logger {
	return &Logger{
		level:     level,
		component: component,
		inner:     log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// Std returns a Logger that shares the output of the standard logger.
func Std(level Level, component string) *Logger {
	return &Logger{level: level, component: component, inner: log.Default()}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, Error+1, "")
}

// With returns a copy of l tagged with another component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, component: component, inner: l.inner}
}

func (l *Logger) logf(lvl Level, format string, args ...any) {
	if lvl < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.component != "" {
		l.inner.Printf("[%s] %s: %s", lvl, l.component, msg)
		return
	}
	l.inner.Printf("[%s] %s", lvl, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(Error, format, args...) }
