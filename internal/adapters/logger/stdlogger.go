// Package logger is the ports.Logger used by the commands. Every entry is one
// line: "[LEVEL] msg | error: err | key=value ...", keys in sorted order.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// LogLevel defines the logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name, in any case, to a LogLevel. "warning" is
// accepted for warn; anything unknown falls back to info.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(name)
	if name == "WARNING" {
		return LevelWarn
	}
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

// StdLogger writes entries at or above its level through a standard log.Logger.
type StdLogger struct {
	out *log.Logger
	min LogLevel
}

// NewStdLogger logs to stderr with date and microsecond time.
func NewStdLogger(level LogLevel) *StdLogger {
	return NewWriterLogger(os.Stderr, level, log.LstdFlags|log.Lmicroseconds)
}

// NewWriterLogger logs to w; flags are the log package's.
func NewWriterLogger(w io.Writer, level LogLevel, flags int) *StdLogger {
	return &StdLogger{out: log.New(w, "", flags), min: level}
}

func (l *StdLogger) Debug(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelDebug, msg, nil, fields)
}

func (l *StdLogger) Info(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelInfo, msg, nil, fields)
}

func (l *StdLogger) Warn(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelWarn, msg, nil, fields)
}

func (l *StdLogger) Error(_ context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(LevelError, msg, err, fields)
}

func (l *StdLogger) write(level LogLevel, msg string, err error, fields []map[string]interface{}) {
	if level < l.min {
		return
	}
	var b strings.Builder
	b.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		b.WriteString(" | error: " + err.Error())
	}
	if kv := formatFields(fields); kv != "" {
		b.WriteString(" |" + kv)
	}
	l.out.Println(b.String())
}

// formatFields merges fields, later maps winning on duplicate keys.
func formatFields(fields []map[string]interface{}) string {
	merged := make(map[string]interface{})
	for _, f := range fields {
		maps.Copy(merged, f)
	}
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}
	return b.String()
}
