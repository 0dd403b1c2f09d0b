package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FileLogger appends timestamped, leveled lines to a single log file.
// Writes are serialized; the file is opened append-only so evaluation
// runs over the same log path never interleave partial lines.
type FileLogger struct {
	mu        sync.Mutex
	file      *os.File
	level     Level
	component string
}

// NewFileLogger opens (creating parent directories as needed) the log file
// at path and returns a logger that records messages at or above level.
func NewFileLogger(path string, level Level) (*FileLogger, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileLogger{file: file, level: level}, nil
}

// WithComponent returns a logger that prefixes every line with component,
// sharing the underlying file and mutex.
func (l *FileLogger) WithComponent(component string) Logger {
	return &componentLogger{parent: l, component: component}
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLogger) log(level Level, component, format string, args ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().UTC().Format("2006-01-02 15:04:05.000")
	if component != "" {
		fmt.Fprintf(l.file, "%s %-5s [%s] %s\n", ts, level, component, msg)
		return
	}
	fmt.Fprintf(l.file, "%s %-5s %s\n", ts, level, msg)
}

func (l *FileLogger) Debug(format string, args ...any) { l.log(LevelDebug, l.component, format, args...) }
func (l *FileLogger) Info(format string, args ...any)  { l.log(LevelInfo, l.component, format, args...) }
func (l *FileLogger) Warn(format string, args ...any)  { l.log(LevelWarn, l.component, format, args...) }
func (l *FileLogger) Error(format string, args ...any) { l.log(LevelError, l.component, format, args...) }

type componentLogger struct {
	parent    *FileLogger
	component string
}

func (c *componentLogger) Debug(format string, args ...any) {
	c.parent.log(LevelDebug, c.component, format, args...)
}

func (c *componentLogger) Info(format string, args ...any) {
	c.parent.log(LevelInfo, c.component, format, args...)
}

func (c *componentLogger) Warn(format string, args ...any) {
	c.parent.log(LevelWarn, c.component, format, args...)
}

func (c *componentLogger) Error(format string, args ...any) {
	c.parent.log(LevelError, c.component, format, args...)
}
