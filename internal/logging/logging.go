// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the injectable logging capability used across the
// parley application.
//
// Components never write to a global console; they receive a Logger through
// their constructor and log through it. This keeps log routing explicit (a
// TUI can direct records to a panel or a file while the share server writes
// to stderr) and keeps tests quiet via Nop.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// =============================================================================
// LEVELS
// =============================================================================

// Level controls which records a Logger emits.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the uppercase tag for the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string into a Level. Unknown values
// default to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// =============================================================================
// LOGGER INTERFACE
// =============================================================================

// Logger is the capability components depend on. Records follow the
// "LEVEL | component | message" convention.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With returns a logger tagged with a component name. Tags nest:
	// With("share").With("server") logs as "share.server".
	With(component string) Logger
}

// =============================================================================
// STANDARD IMPLEMENTATION
// =============================================================================

// Log writes level-gated records through a standard library log.Logger.
type Log struct {
	mu        sync.Mutex
	out       *log.Logger
	level     Level
	component string
}

// New creates a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Log {
	return &Log{
		out:   log.New(w, "", log.LstdFlags),
		level: level,
	}
}

// NewStderr creates a Logger writing to stderr at the given level.
func NewStderr(level Level) *Log {
	return New(os.Stderr, level)
}

// NewFile creates a Logger appending to the file at path. The file is
// created 0600 if missing.
func NewFile(path string, level Level) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), nil
}

// SetLevel changes the emission threshold.
func (l *Log) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Log) logf(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		l.out.Printf("%s | %s | %s", level, l.component, msg)
		return
	}
	l.out.Printf("%s | %s", level, msg)
}

// Debugf logs at debug level.
func (l *Log) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Log) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Log) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Log) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

// With returns a child logger tagged with component. The child shares the
// parent's writer and level.
func (l *Log) With(component string) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := component
	if l.component != "" {
		name = l.component + "." + component
	}
	return &Log{
		out:       l.out,
		level:     l.level,
		component: name,
	}
}

// =============================================================================
// NOP IMPLEMENTATION
// =============================================================================

// nop discards everything. Tests and optional dependencies use it.
type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}
func (n nop) With(string) Logger  { return n }

// Nop returns a Logger that discards all records.
func Nop() Logger { return nop{} }
